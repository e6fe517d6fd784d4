package domain

import (
	"context"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// 保存订单（新建或更新）
	Save(ctx context.Context, order *Order) error
	// 获取订单
	Get(ctx context.Context, orderID string) (*Order, error)
	// 获取全部订单
	List(ctx context.Context) ([]*Order, error)
	// 按状态获取订单
	ListByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)
}

// BlockRepository 交易块仓储接口
type BlockRepository interface {
	Save(ctx context.Context, block *Block) error
	Get(ctx context.Context, blockID string) (*Block, error)
	List(ctx context.Context) ([]*Block, error)
}

// TradeErrorRepository 交易差错仓储接口
type TradeErrorRepository interface {
	Save(ctx context.Context, item *TradeErrorItem) error
	Get(ctx context.Context, errorID string) (*TradeErrorItem, error)
	ListByStatus(ctx context.Context, status TradeErrorStatus) ([]*TradeErrorItem, error)
}
