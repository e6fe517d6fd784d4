// Package mysql 交易生命周期引擎 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"gorm.io/gorm"
)

// AutoMigrate 建表：订单、块、执行与差错。审计账本表由 ledger 包自行迁移。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Order{},
		&domain.Block{},
		&domain.Execution{},
		&domain.TradeErrorItem{},
	)
}

// OrderRepository 订单 MySQL 仓储
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save 保存订单及其执行记录
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.OrderID, err)
	}
	return nil
}

// Get 按订单 ID 获取订单
func (r *OrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Executions").
		Where("order_id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFound("order not found: %s", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %s: %w", orderID, err)
	}
	return &order, nil
}

// List 获取全部订单，按订单 ID 升序
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Preload("Executions").
		Order("order_id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListByStatus 按状态获取订单，按订单 ID 升序
func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Preload("Executions").
		Where("status = ?", status).
		Order("order_id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by status %s: %w", status, err)
	}
	return orders, nil
}

// BlockRepository 交易块 MySQL 仓储
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository 创建交易块仓储
func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Save 保存交易块及其块级执行
func (r *BlockRepository) Save(ctx context.Context, block *domain.Block) error {
	if err := r.db.WithContext(ctx).Save(block).Error; err != nil {
		return fmt.Errorf("failed to save block %s: %w", block.BlockID, err)
	}
	return nil
}

// Get 按块 ID 获取交易块
func (r *BlockRepository) Get(ctx context.Context, blockID string) (*domain.Block, error) {
	var block domain.Block
	err := r.db.WithContext(ctx).
		Preload("Executions").
		Where("block_id = ?", blockID).
		First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFound("block not found: %s", blockID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query block %s: %w", blockID, err)
	}
	return &block, nil
}

// List 获取全部交易块，按块 ID 升序
func (r *BlockRepository) List(ctx context.Context) ([]*domain.Block, error) {
	var blocks []*domain.Block
	err := r.db.WithContext(ctx).
		Preload("Executions").
		Order("block_id ASC").
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return blocks, nil
}

// TradeErrorRepository 交易差错 MySQL 仓储
type TradeErrorRepository struct {
	db *gorm.DB
}

// NewTradeErrorRepository 创建交易差错仓储
func NewTradeErrorRepository(db *gorm.DB) *TradeErrorRepository {
	return &TradeErrorRepository{db: db}
}

// Save 保存交易差错
func (r *TradeErrorRepository) Save(ctx context.Context, item *domain.TradeErrorItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save trade error %s: %w", item.ErrorID, err)
	}
	return nil
}

// Get 按差错 ID 获取交易差错
func (r *TradeErrorRepository) Get(ctx context.Context, errorID string) (*domain.TradeErrorItem, error) {
	var item domain.TradeErrorItem
	err := r.db.WithContext(ctx).Where("error_id = ?", errorID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFound("trade error not found: %s", errorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query trade error %s: %w", errorID, err)
	}
	return &item, nil
}

// ListByStatus 按状态获取交易差错，按差错 ID 升序
func (r *TradeErrorRepository) ListByStatus(ctx context.Context, status domain.TradeErrorStatus) ([]*domain.TradeErrorItem, error) {
	var items []*domain.TradeErrorItem
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("error_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trade errors by status %s: %w", status, err)
	}
	return items, nil
}
