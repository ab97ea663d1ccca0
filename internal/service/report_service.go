package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"roomserve/internal/access"
	"roomserve/internal/domain"
	"roomserve/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	OrdersSheet   = "Orders"
	ExpensesSheet = "Expenses"
)

var (
	orderHeaders   = []string{"Order ID", "Tenant", "Room", "Status", "Payment", "Items", "Total", "Created At"}
	expenseHeaders = []string{"Expense ID", "Tenant", "Description", "Amount", "Spent At"}
)

// ReportService exports orders (and expenses, for callers who may read
// finance data) as an xlsx workbook. Rows come through the scoped
// repositories, so a partner only ever sees their own tenant.
type ReportService struct {
	orders   *repository.ScopedRepository[*domain.Order]
	expenses *repository.ScopedRepository[*domain.Expense]
	logger   *zap.Logger
}

func NewReportService(orders *repository.ScopedRepository[*domain.Order], expenses *repository.ScopedRepository[*domain.Expense], logger *zap.Logger) *ReportService {
	return &ReportService{orders: orders, expenses: expenses, logger: logger}
}

// OrdersWorkbook builds the workbook. status narrows the Orders sheet when set.
func (s *ReportService) OrdersWorkbook(ctx context.Context, p *domain.Principal, status domain.OrderStatus) ([]byte, error) {
	if err := access.Require(p, domain.PermReportsExport); err != nil {
		return nil, err
	}
	filter := repository.ListFilter{}
	if status != "" {
		if !status.Valid() {
			return nil, domain.Invalid("unknown order status %q", status)
		}
		filter.Equals = map[string]string{"status": string(status)}
	}
	orders, err := s.orders.List(ctx, p, filter)
	if err != nil {
		return nil, err
	}
	var expenses []*domain.Expense
	withExpenses := p.Can(domain.PermFinanceRead)
	if withExpenses {
		expenses, err = s.expenses.List(ctx, p, repository.ListFilter{})
		if err != nil {
			return nil, err
		}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(OrdersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{
			o.ID, tenantLabel(o.TenantID), o.RoomID, string(o.Status), string(o.PaymentMethod),
			len(o.Items), o.TotalAmount, o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, OrdersSheet, orderHeaders, rows, headerStyle); err != nil {
		return nil, err
	}

	if withExpenses {
		if _, err := f.NewSheet(ExpensesSheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		rows = rows[:0]
		for _, e := range expenses {
			rows = append(rows, []any{
				e.ID, tenantLabel(e.TenantID), e.Description, e.Amount, e.SpentAt.UTC().Format(time.RFC3339),
			})
		}
		if err := writeSheet(f, ExpensesSheet, expenseHeaders, rows, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	s.logger.Info("orders report exported",
		zap.String("actor_id", p.ID),
		zap.Int("orders", len(orders)),
		zap.Int("expenses", len(expenses)),
	)
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// tenantLabel renders direct-operated rows as "direct".
func tenantLabel(t *string) string {
	if t == nil {
		return "direct"
	}
	return *t
}
