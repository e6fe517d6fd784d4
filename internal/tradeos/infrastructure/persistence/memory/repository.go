// Package memory 提供基于内存的仓储实现。
// 引擎默认的单写者登记簿：所有变更经由编排器串行提交，
// 读写锁仅用于保护并发查询。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// OrderRepository 内存订单仓储
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepository 创建内存订单仓储
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order)}
}

// Save 保存订单
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.OrderID] = order
	return nil
}

// Get 获取订单
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewNotFound("order not found: %s", orderID)
	}
	return order, nil
}

// List 获取全部订单，按订单 ID 升序。
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })
	return orders, nil
}

// ListByStatus 按状态获取订单，按订单 ID 升序。
func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.Status == status {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })
	return orders, nil
}

// BlockRepository 内存交易块仓储
type BlockRepository struct {
	mu     sync.RWMutex
	blocks map[string]*domain.Block
}

// NewBlockRepository 创建内存交易块仓储
func NewBlockRepository() *BlockRepository {
	return &BlockRepository{blocks: make(map[string]*domain.Block)}
}

// Save 保存交易块
func (r *BlockRepository) Save(ctx context.Context, block *domain.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[block.BlockID] = block
	return nil
}

// Get 获取交易块
func (r *BlockRepository) Get(ctx context.Context, blockID string) (*domain.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	block, ok := r.blocks[blockID]
	if !ok {
		return nil, domain.NewNotFound("block not found: %s", blockID)
	}
	return block, nil
}

// List 获取全部交易块，按块 ID 升序。
func (r *BlockRepository) List(ctx context.Context) ([]*domain.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blocks := make([]*domain.Block, 0, len(r.blocks))
	for _, block := range r.blocks {
		blocks = append(blocks, block)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].BlockID < blocks[j].BlockID })
	return blocks, nil
}

// TradeErrorRepository 内存交易差错仓储
type TradeErrorRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.TradeErrorItem
}

// NewTradeErrorRepository 创建内存交易差错仓储
func NewTradeErrorRepository() *TradeErrorRepository {
	return &TradeErrorRepository{items: make(map[string]*domain.TradeErrorItem)}
}

// Save 保存交易差错
func (r *TradeErrorRepository) Save(ctx context.Context, item *domain.TradeErrorItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ErrorID] = item
	return nil
}

// Get 获取交易差错
func (r *TradeErrorRepository) Get(ctx context.Context, errorID string) (*domain.TradeErrorItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[errorID]
	if !ok {
		return nil, domain.NewNotFound("trade error not found: %s", errorID)
	}
	return item, nil
}

// ListByStatus 按状态获取交易差错，按差错 ID 升序。
func (r *TradeErrorRepository) ListByStatus(ctx context.Context, status domain.TradeErrorStatus) ([]*domain.TradeErrorItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]*domain.TradeErrorItem, 0)
	for _, item := range r.items {
		if item.Status == status {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ErrorID < items[j].ErrorID })
	return items, nil
}
