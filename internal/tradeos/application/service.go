package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"github.com/wyfcoding/tradeos/pkg/metrics"
)

// TradeOSService 交易生命周期编排服务
// 持有三个实体登记簿（订单/块/差错），串联闸口、最佳执行、路由、
// 分摊与差错引擎，并把每次状态变更追加到 WORM 审计账本。
type TradeOSService struct {
	orders      domain.OrderRepository
	blocks      domain.BlockRepository
	tradeErrors domain.TradeErrorRepository
	ledger      domain.Ledger

	pretrade   *domain.PreTradeChecker
	bestex     *domain.BestExecutionEngine
	routing    *domain.RoutingEngine
	allocation *domain.AllocationEngine
	compliance domain.ComplianceGateway
	regdesk    domain.RegDeskGateway

	metrics *metrics.Metrics
	logger  *slog.Logger

	// 聚合序号分配（审计账本因果键）
	seqMu sync.Mutex
	seqs  map[string]uint64

	// 块级互斥：同一块的路由与分摊串行执行
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewTradeOSService 创建编排服务
func NewTradeOSService(
	orders domain.OrderRepository,
	blocks domain.BlockRepository,
	tradeErrors domain.TradeErrorRepository,
	ledger domain.Ledger,
	pretrade *domain.PreTradeChecker,
	bestex *domain.BestExecutionEngine,
	routing *domain.RoutingEngine,
	allocation *domain.AllocationEngine,
	compliance domain.ComplianceGateway,
	regdesk domain.RegDeskGateway,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TradeOSService {
	return &TradeOSService{
		orders:      orders,
		blocks:      blocks,
		tradeErrors: tradeErrors,
		ledger:      ledger,
		pretrade:    pretrade,
		bestex:      bestex,
		routing:     routing,
		allocation:  allocation,
		compliance:  compliance,
		regdesk:     regdesk,
		metrics:     m,
		logger:      logger.With("module", "tradeos"),
		seqs:        make(map[string]uint64),
		locks:       make(map[string]*sync.Mutex),
	}
}

// blockLock 获取块级互斥锁，同一块 ID 恒返回同一把锁。
func (s *TradeOSService) blockLock(blockID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[blockID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[blockID] = lock
	}
	return lock
}

// nextSeq 分配聚合内单调递增的审计序号。
// 进程内首次遇到的聚合先从账本恢复已落账的最新序号，
// 避免重启后从 1 重新计数导致新事件被幂等丢弃。
func (s *TradeOSService) nextSeq(ctx context.Context, aggregateID string) (uint64, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	seq, known := s.seqs[aggregateID]
	if !known {
		if reader, ok := s.ledger.(domain.SequenceReader); ok {
			last, err := reader.LastSeq(ctx, aggregateID)
			if err != nil {
				return 0, fmt.Errorf("failed to recover ledger sequence for aggregate %s: %w", aggregateID, err)
			}
			seq = last
		}
	}
	seq++
	s.seqs[aggregateID] = seq
	return seq, nil
}

// appendEvent 追加审计事件。
// 账本写入失败视为严重事故记录日志，但不回滚已提交的业务状态。
func (s *TradeOSService) appendEvent(ctx context.Context, aggregateType, aggregateID, eventType string, payload map[string]any) {
	seq, err := s.nextSeq(ctx, aggregateID)
	if err != nil {
		s.logger.Error("failed to assign audit sequence",
			"aggregate_id", aggregateID, "type", eventType, "error", err)
		return
	}
	event := &domain.AuditEvent{
		Type:          eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Seq:           seq,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
	if err := s.ledger.Append(ctx, event); err != nil {
		s.logger.Error("failed to append audit event",
			"aggregate_id", aggregateID, "type", eventType, "error", err)
		return
	}
	s.metrics.LedgerAppendsTotal.Inc()
}

// CreateOrder 接收订单：先做入参校验，再运行事前闸口。
// 任一闸口未通过则订单以 HELD 状态落库并携带全部原因。
func (s *TradeOSService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	if err := validateCreateOrder(cmd); err != nil {
		return nil, err
	}

	order := domain.NewOrder(
		fmt.Sprintf("ORD-%d", idgen.GenID()),
		cmd.ClientID,
		cmd.AccountID,
		cmd.TraderID,
		domain.Side(cmd.Side),
		cmd.InstrumentID,
		domain.AssetClass(cmd.AssetClass),
		cmd.Quantity,
		domain.PriceType(cmd.PriceType),
		domain.TimeInForce(cmd.TimeInForce),
		cmd.Details,
	)

	result, err := s.pretrade.Evaluate(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("pre-trade evaluation aborted for order %s: %w", order.OrderID, err)
	}

	if !result.Passed {
		order.Hold(result.Reasons)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, domain.AggregateOrder, order.OrderID, domain.EventOrderCreated, map[string]any{
		"client_id":     order.ClientID,
		"account_id":    order.AccountID,
		"instrument_id": order.InstrumentID,
		"asset_class":   order.AssetClass,
		"side":          order.Side,
		"quantity":      order.Quantity.String(),
	})
	if order.Status == domain.OrderStatusHeld {
		s.appendEvent(ctx, domain.AggregateOrder, order.OrderID, domain.EventOrderHeld, map[string]any{
			"reasons": order.HeldReasons,
		})
		s.metrics.OrdersHeldTotal.Inc()
		s.logger.Warn("order held by pre-trade gates",
			"order_id", order.OrderID, "reasons", order.HeldReasons)
	} else {
		s.metrics.OrdersCreatedTotal.Inc()
		s.logger.Info("order accepted",
			"order_id", order.OrderID, "instrument_id", order.InstrumentID, "quantity", order.Quantity)
	}

	return ToOrderDTO(order), nil
}

// validateCreateOrder 订单接收入参校验。
func validateCreateOrder(cmd CreateOrderCommand) error {
	if cmd.ClientID == "" || cmd.AccountID == "" || cmd.TraderID == "" {
		return domain.NewValidation("client_id, account_id and trader_id are required")
	}
	if cmd.InstrumentID == "" {
		return domain.NewValidation("instrument_id is required")
	}
	side := domain.Side(cmd.Side)
	if side != domain.SideBuy && side != domain.SideSell {
		return domain.NewValidation("invalid side: %s", cmd.Side)
	}
	if !domain.ValidAssetClass(domain.AssetClass(cmd.AssetClass)) {
		return domain.NewValidation("invalid asset class: %s", cmd.AssetClass)
	}
	if !cmd.Quantity.IsPositive() {
		return domain.NewValidation("quantity must be positive, got %s", cmd.Quantity)
	}
	pt := domain.PriceType(cmd.PriceType)
	if pt != domain.PriceTypeMarket && pt != domain.PriceTypeLimit {
		return domain.NewValidation("invalid price type: %s", cmd.PriceType)
	}
	switch domain.TimeInForce(cmd.TimeInForce) {
	case domain.TimeInForceDay, domain.TimeInForceGTC, domain.TimeInForceIOC:
	default:
		return domain.NewValidation("invalid time in force: %s", cmd.TimeInForce)
	}
	if domain.AssetClass(cmd.AssetClass) == domain.AssetClassOptions && cmd.Details.RequiredOptionsLevel <= 0 {
		return domain.NewValidation("options orders must declare required_options_level")
	}
	return nil
}

// GetOrder 获取订单详情
func (s *TradeOSService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(order), nil
}

// ListOrders 列出订单，status 为空时返回全部。
func (s *TradeOSService) ListOrders(ctx context.Context, status string) ([]*OrderDTO, error) {
	var (
		orders []*domain.Order
		err    error
	)
	if status == "" {
		orders, err = s.orders.List(ctx)
	} else {
		orders, err = s.orders.ListByStatus(ctx, domain.OrderStatus(status))
	}
	if err != nil {
		return nil, err
	}
	dtos := make([]*OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, ToOrderDTO(order))
	}
	return dtos, nil
}

// CancelOrder 取消订单。
// 已成交或已取消的订单不可取消，其经济影响走差错流程。
func (s *TradeOSService) CancelOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, domain.NewConflict("order %s cannot be cancelled in status %s", orderID, order.Status)
	}

	order.Status = domain.OrderStatusCancelled
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, domain.AggregateOrder, order.OrderID, domain.EventOrderCancelled, nil)
	s.metrics.OrdersCancelled.Inc()
	s.logger.Info("order cancelled", "order_id", orderID)
	return ToOrderDTO(order), nil
}

// ReleaseOrder 由合规审查人释放 HELD 订单：重新运行全部事前闸口。
// 全部通过则回到 NEW；仍有未通过项则保持 HELD 并刷新原因清单。
func (s *TradeOSService) ReleaseOrder(ctx context.Context, orderID, reviewerID string) (*OrderDTO, error) {
	if reviewerID == "" {
		return nil, domain.NewValidation("reviewer_id is required to release a held order")
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusHeld {
		return nil, domain.NewConflict("order %s is not held, status %s", orderID, order.Status)
	}

	result, err := s.pretrade.Evaluate(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("pre-trade re-evaluation aborted for order %s: %w", orderID, err)
	}

	if result.Passed {
		order.Release()
	} else {
		order.Hold(result.Reasons)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	if result.Passed {
		s.appendEvent(ctx, domain.AggregateOrder, order.OrderID, domain.EventOrderReleased, map[string]any{
			"reviewer_id": reviewerID,
		})
		s.logger.Info("order released", "order_id", orderID, "reviewer_id", reviewerID)
	} else {
		s.appendEvent(ctx, domain.AggregateOrder, order.OrderID, domain.EventOrderHeld, map[string]any{
			"reviewer_id": reviewerID,
			"reasons":     order.HeldReasons,
		})
		s.logger.Warn("order remains held after re-evaluation",
			"order_id", orderID, "reviewer_id", reviewerID, "reasons", order.HeldReasons)
	}
	return ToOrderDTO(order), nil
}

// BuildBlock 按聚合条件成块：选取全部符合条件的 NEW 订单，
// 成员与总量在成块时定格，成员订单随即进入 ROUTED 状态。
// 条件中的标的与方向可省略，但选中的订单必须同标的、同方向。
func (s *TradeOSService) BuildBlock(ctx context.Context, cmd BuildBlockCommand) (*BlockDTO, error) {
	assetClass := domain.AssetClass(cmd.AssetClass)
	if !domain.ValidAssetClass(assetClass) {
		return nil, domain.NewValidation("invalid asset class: %s", cmd.AssetClass)
	}
	if cmd.Side != "" {
		side := domain.Side(cmd.Side)
		if side != domain.SideBuy && side != domain.SideSell {
			return nil, domain.NewValidation("invalid side: %s", cmd.Side)
		}
	}

	candidates, err := s.orders.ListByStatus(ctx, domain.OrderStatusNew)
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(candidates))
	for _, order := range candidates {
		if order.AssetClass != assetClass {
			continue
		}
		if cmd.InstrumentID != "" && order.InstrumentID != cmd.InstrumentID {
			continue
		}
		if cmd.Side != "" && order.Side != domain.Side(cmd.Side) {
			continue
		}
		orders = append(orders, order)
	}
	if len(orders) == 0 {
		return nil, domain.NewNotFound("no eligible NEW orders match asset class %s", cmd.AssetClass)
	}

	first := orders[0]
	totalQty := decimal.Zero
	orderIDs := make([]string, 0, len(orders))
	for _, order := range orders {
		if order.InstrumentID != first.InstrumentID || order.Side != first.Side {
			return nil, domain.NewValidation("matched orders span multiple instruments or sides, narrow the criteria")
		}
		totalQty = totalQty.Add(order.Quantity)
		orderIDs = append(orderIDs, order.OrderID)
	}

	block := domain.NewBlock(
		fmt.Sprintf("BLK-%d", idgen.GenID()),
		first.AssetClass,
		first.InstrumentID,
		first.Side,
		orderIDs,
		totalQty,
	)
	if err := s.blocks.Save(ctx, block); err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Stage(block.BlockID)
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
	}

	s.appendEvent(ctx, domain.AggregateBlock, block.BlockID, domain.EventBlockBuilt, map[string]any{
		"order_ids":     block.OrderIDs,
		"instrument_id": block.InstrumentID,
		"total_qty":     block.TotalQty.String(),
	})
	s.metrics.BlocksBuiltTotal.Inc()
	s.logger.Info("block built",
		"block_id", block.BlockID, "orders", len(orders), "total_qty", totalQty)
	return ToBlockDTO(block), nil
}

// GetBlock 获取交易块详情
func (s *TradeOSService) GetBlock(ctx context.Context, blockID string) (*BlockDTO, error) {
	block, err := s.blocks.Get(ctx, blockID)
	if err != nil {
		return nil, err
	}
	return ToBlockDTO(block), nil
}

// RouteBlock 为块选择场所并派发执行。
// 同一块的路由在块锁内串行；已有执行记录的块直接返回当前状态（幂等）。
func (s *TradeOSService) RouteBlock(ctx context.Context, cmd RouteBlockCommand) (*BlockDTO, error) {
	lock := s.blockLock(cmd.BlockID)
	lock.Lock()
	defer lock.Unlock()

	block, err := s.blocks.Get(ctx, cmd.BlockID)
	if err != nil {
		return nil, err
	}
	if block.HasExecutions() {
		s.logger.Info("block already routed, returning recorded state", "block_id", cmd.BlockID)
		return ToBlockDTO(block), nil
	}

	orders := make([]*domain.Order, 0, len(block.OrderIDs))
	for _, orderID := range block.OrderIDs {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		// 成员在成块后被取消：块成员与总量已定格，禁止继续派发。
		if order.Status == domain.OrderStatusCancelled {
			return nil, domain.NewConflict("order %s in block %s is cancelled, block cannot be routed", orderID, cmd.BlockID)
		}
		orders = append(orders, order)
	}

	record, err := s.bestex.SelectVenue(block, cmd.Quotes, cmd.Override)
	if err != nil {
		return nil, err
	}
	if record.Overridden {
		if err := s.compliance.RecordOverride(ctx, domain.OverrideRecord{
			BlockID:    block.BlockID,
			Venue:      record.Venue,
			ApproverID: record.ApproverID,
			Reason:     record.Reason,
		}); err != nil {
			return nil, fmt.Errorf("failed to record venue override for block %s: %w", block.BlockID, err)
		}
	}

	var chosen *domain.VenueQuote
	for i := range cmd.Quotes {
		if cmd.Quotes[i].Venue == record.Venue {
			chosen = &cmd.Quotes[i]
			break
		}
	}
	if chosen == nil {
		return nil, domain.NewValidation("no quote found for selected venue %s", record.Venue)
	}

	started := time.Now()
	executions, err := s.routing.Route(ctx, block, orders, *chosen)
	s.metrics.GatewayCallDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}

	block.BestEx = record
	block.RecordExecutions(executions)
	if err := s.blocks.Save(ctx, block); err != nil {
		return nil, err
	}
	if err := s.distributeExecutions(ctx, block, orders, executions); err != nil {
		return nil, err
	}

	execIDs := make([]string, 0, len(executions))
	for _, exec := range executions {
		execIDs = append(execIDs, exec.ExecutionID)
		s.appendEvent(ctx, domain.AggregateBlock, block.BlockID, domain.EventExecutionRecorded, map[string]any{
			"execution_id": exec.ExecutionID,
			"venue":        exec.Venue,
			"quantity":     exec.Quantity.String(),
			"price":        exec.Price.String(),
		})
	}
	s.appendEvent(ctx, domain.AggregateBlock, block.BlockID, domain.EventBlockRouted, map[string]any{
		"venue":         record.Venue,
		"overridden":    record.Overridden,
		"execution_ids": execIDs,
	})
	s.metrics.BlocksRoutedTotal.Inc()
	s.logger.Info("block routed",
		"block_id", block.BlockID, "venue", record.Venue,
		"executions", len(executions), "overridden", record.Overridden)
	return ToBlockDTO(block), nil
}

// distributeExecutions 把块级执行按成员顺序逐笔分派到订单。
// 单笔执行可跨多个订单拆分，费用按吃量比例分摊；
// 累计成交推动成员订单进入 PARTIAL/FILLED。
func (s *TradeOSService) distributeExecutions(ctx context.Context, block *domain.Block, orders []*domain.Order, executions []*domain.Execution) error {
	idx := 0
	touched := make(map[string]struct{}, len(orders))
	for _, exec := range executions {
		remaining := exec.Quantity
		for remaining.IsPositive() && idx < len(orders) {
			order := orders[idx]
			need := order.RemainingQuantity()
			if !need.IsPositive() {
				idx++
				continue
			}
			take := need
			if remaining.LessThan(take) {
				take = remaining
			}
			fee := decimal.Zero
			if exec.Quantity.IsPositive() {
				fee = exec.Fee.Mul(take).Div(exec.Quantity)
			}
			fill := &domain.Execution{
				ExecutionID: fmt.Sprintf("EXE-%d", idgen.GenID()),
				OrderID:     order.OrderID,
				BlockID:     block.BlockID,
				Venue:       exec.Venue,
				VenueExecID: exec.VenueExecID,
				Quantity:    take,
				Price:       exec.Price,
				Fee:         fee,
				ExecutedAt:  exec.ExecutedAt,
			}
			order.ApplyFill(fill)
			remaining = remaining.Sub(take)
			touched[order.OrderID] = struct{}{}

			eventType := domain.EventOrderPartialFill
			if order.Status == domain.OrderStatusFilled {
				eventType = domain.EventOrderFilled
			}
			s.appendEvent(ctx, domain.AggregateOrder, order.OrderID, eventType, map[string]any{
				"execution_id":  fill.ExecutionID,
				"venue_exec_id": fill.VenueExecID,
				"venue":         fill.Venue,
				"quantity":      fill.Quantity.String(),
				"price":         fill.Price.String(),
			})
		}
	}
	for _, order := range orders {
		if _, ok := touched[order.OrderID]; !ok {
			continue
		}
		if err := s.orders.Save(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

// AllocateBlock 按比例分摊块级执行并更新托管仓位。
// 成员订单的成交在路由时已按真实执行归集；分摊负责托管侧的
// 仓位与现金交收，份额按成员委托量加权、以块 VWAP 计价。
// 分摊是一次性动作：已分摊的块再次请求返回冲突。
func (s *TradeOSService) AllocateBlock(ctx context.Context, cmd AllocateBlockCommand) (*AllocationDTO, error) {
	lock := s.blockLock(cmd.BlockID)
	lock.Lock()
	defer lock.Unlock()

	block, err := s.blocks.Get(ctx, cmd.BlockID)
	if err != nil {
		return nil, err
	}
	if block.Status == domain.BlockStatusAllocated {
		return nil, domain.NewConflict("block %s is already allocated", cmd.BlockID)
	}

	orders := make([]*domain.Order, 0, len(block.OrderIDs))
	for _, orderID := range block.OrderIDs {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		// 已取消的成员不得获得分摊，也不得被交收撬回成交状态。
		if order.Status == domain.OrderStatusCancelled {
			return nil, domain.NewConflict("order %s in block %s is cancelled, block cannot be allocated", orderID, cmd.BlockID)
		}
		orders = append(orders, order)
	}

	result, err := s.allocation.Allocate(ctx, block, orders, cmd.Method)
	if err != nil {
		return nil, err
	}

	block.Status = domain.BlockStatusAllocated
	if err := s.blocks.Save(ctx, block); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, domain.AggregateBlock, block.BlockID, domain.EventBlockAllocated, map[string]any{
		"method":      result.Method,
		"allocations": len(result.Allocations),
	})
	s.metrics.BlocksAllocatedTotal.Inc()
	s.logger.Info("block allocated",
		"block_id", block.BlockID, "method", result.Method, "orders", len(result.Allocations))
	return &AllocationDTO{
		BlockID:     block.BlockID,
		Method:      result.Method,
		Allocations: result.Allocations,
	}, nil
}

// OpenTradeError 对某笔已分摊执行开立差错，隔离其损益影响。
func (s *TradeOSService) OpenTradeError(ctx context.Context, cmd OpenTradeErrorCommand) (*TradeErrorDTO, error) {
	if cmd.Type == "" {
		return nil, domain.NewValidation("trade error type is required")
	}
	order, err := s.orders.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	exec := order.FindExecution(cmd.ExecutionID)
	if exec == nil {
		return nil, domain.NewNotFound("execution %s not found on order %s", cmd.ExecutionID, cmd.OrderID)
	}

	item := domain.NewTradeError(
		fmt.Sprintf("TE-%d", idgen.GenID()),
		order, exec, cmd.Type, cmd.CorrectedPrice, time.Now(),
	)
	if err := s.tradeErrors.Save(ctx, item); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, domain.AggregateTradeError, item.ErrorID, domain.EventTradeErrorOpened, map[string]any{
		"order_id":     item.OrderID,
		"execution_id": item.ExecutionID,
		"type":         item.Type,
		"pnl_delta":    item.PnLDelta.String(),
	})
	s.metrics.TradeErrorsOpen.Inc()
	s.logger.Warn("trade error opened",
		"error_id", item.ErrorID, "order_id", item.OrderID, "pnl_delta", item.PnLDelta)
	return ToTradeErrorDTO(item), nil
}

// CloseTradeError 以四眼原则关闭差错。
// 原始请求方为差错所属订单的交易员，不得出现在审批人之列。
func (s *TradeOSService) CloseTradeError(ctx context.Context, cmd CloseTradeErrorCommand) (*TradeErrorDTO, error) {
	item, err := s.tradeErrors.Get(ctx, cmd.ErrorID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Get(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}

	if err := item.Close(domain.TradeErrorStatus(cmd.Resolution), cmd.ApproverIDs, order.TraderID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.tradeErrors.Save(ctx, item); err != nil {
		return nil, err
	}

	s.appendEvent(ctx, domain.AggregateTradeError, item.ErrorID, domain.EventTradeErrorClosed, map[string]any{
		"resolution": item.Status,
		"approvers":  cmd.ApproverIDs,
	})
	s.metrics.TradeErrorsOpen.Dec()
	s.logger.Info("trade error closed",
		"error_id", item.ErrorID, "resolution", item.Status)
	return ToTradeErrorDTO(item), nil
}

// ListTradeErrors 按状态列出差错
func (s *TradeOSService) ListTradeErrors(ctx context.Context, status string) ([]*TradeErrorDTO, error) {
	items, err := s.tradeErrors.ListByStatus(ctx, domain.TradeErrorStatus(status))
	if err != nil {
		return nil, err
	}
	dtos := make([]*TradeErrorDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ToTradeErrorDTO(item))
	}
	return dtos, nil
}

// GenerateConfirm 生成订单的成交确认书并报送监管席位。
func (s *TradeOSService) GenerateConfirm(ctx context.Context, orderID string) (*domain.ConfirmRecord, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	confirm, err := domain.BuildConfirm(order, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.regdesk.LogConfirm(ctx, confirm); err != nil {
		return nil, fmt.Errorf("failed to log confirm for order %s: %w", orderID, err)
	}

	s.appendEvent(ctx, domain.AggregateOrder, orderID, domain.EventConfirmGenerated, map[string]any{
		"sha256": confirm.SHA256,
	})
	s.logger.Info("confirm generated", "order_id", orderID, "sha256", confirm.SHA256)
	return confirm, nil
}

// ExportBlotter 导出确定性的订单报表。
// outPath 非空时把负载写入该文件，为空则只返回内存导出结果。
func (s *TradeOSService) ExportBlotter(ctx context.Context, filter domain.BlotterFilter, outPath string) (*domain.BlotterExport, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	export, err := domain.BuildBlotter(orders, filter, time.Now())
	if err != nil {
		return nil, err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, export.Payload, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write blotter file %s: %w", outPath, err)
		}
		s.logger.Info("blotter written to disk", "path", outPath)
	}

	s.appendEvent(ctx, domain.AggregateDesk, "desk", domain.EventBlotterExported, map[string]any{
		"rows":   len(export.Rows),
		"sha256": export.SHA256,
	})
	s.logger.Info("blotter exported", "rows", len(export.Rows), "sha256", export.SHA256)
	return export, nil
}
