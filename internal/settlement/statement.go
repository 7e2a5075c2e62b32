package settlement

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gridreserve-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// StatementRow is one settled bid with its commission split.
type StatementRow struct {
	BidID          int64
	BatteryOwnerID uuid.UUID
	AggregatorID   uuid.UUID
	AmountKwh      int64
	Price          int64
	Gross          int64
	Commission     int64
	Net            int64
	SettledAt      time.Time
}

// StatementRows collects the settled bids of a session in settlement order.
func (e *Engine) StatementRows(ctx context.Context, sessionID uuid.UUID) ([]StatementRow, error) {
	var bids []domain.Bid
	if err := e.DB.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, domain.BidStatusSettled).
		Order("bid_id").Find(&bids).Error; err != nil {
		return nil, err
	}

	rows := make([]StatementRow, 0, len(bids))
	for _, bid := range bids {
		var records []domain.SettlementRecord
		if err := e.DB.WithContext(ctx).Where("bid_id = ?", bid.BidID).Find(&records).Error; err != nil {
			return nil, err
		}
		row := StatementRow{
			BidID:          bid.BidID,
			BatteryOwnerID: bid.BatteryOwnerID,
			AggregatorID:   bid.AggregatorID,
			AmountKwh:      bid.AmountKwh,
			Price:          bid.Price,
			Gross:          bid.Gross(),
			SettledAt:      bid.UpdatedAt,
		}
		for _, r := range records {
			switch r.Kind {
			case domain.RecordAggregatorCommission:
				row.Commission = r.Amount
			case domain.RecordOwnerPayout:
				row.Net = r.Amount
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BuildStatementXLSX renders a settlement statement workbook for a session.
func BuildStatementXLSX(session *domain.MarketSession, rows []StatementRow) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	bidsSheet := "settled bids"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(bidsSheet); err != nil {
		return nil, err
	}

	var totalGross, totalCommission, totalNet int64
	for _, r := range rows {
		totalGross += r.Gross
		totalCommission += r.Commission
		totalNet += r.Net
	}

	_ = f.SetCellValue(summarySheet, "A1", "Reserve Settlement Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Session")
	_ = f.SetCellValue(summarySheet, "B3", session.SessionID.String())
	_ = f.SetCellValue(summarySheet, "A4", "Reserve")
	_ = f.SetCellValue(summarySheet, "B4", session.Reserve)
	_ = f.SetCellValue(summarySheet, "A5", "Required Energy (kWh)")
	_ = f.SetCellValue(summarySheet, "B5", session.RequiredEnergyKwh)
	_ = f.SetCellValue(summarySheet, "A6", "Settled Bids")
	_ = f.SetCellValue(summarySheet, "B6", len(rows))
	_ = f.SetCellValue(summarySheet, "A7", "Total Gross")
	_ = f.SetCellValue(summarySheet, "B7", totalGross)
	_ = f.SetCellValue(summarySheet, "A8", "Total Commission")
	_ = f.SetCellValue(summarySheet, "B8", totalCommission)
	_ = f.SetCellValue(summarySheet, "A9", "Total Net To Owners")
	_ = f.SetCellValue(summarySheet, "B9", totalNet)

	headers := []string{"Bid", "Battery Owner", "Aggregator", "Amount (kWh)", "Price", "Gross", "Commission", "Net", "Settled At"}
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bidsSheet, cell, hdr)
	}
	for i, r := range rows {
		row := i + 2
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("A%d", row), r.BidID)
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("B%d", row), r.BatteryOwnerID.String())
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("C%d", row), r.AggregatorID.String())
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("D%d", row), r.AmountKwh)
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("E%d", row), r.Price)
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("F%d", row), r.Gross)
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("G%d", row), r.Commission)
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("H%d", row), r.Net)
		_ = f.SetCellValue(bidsSheet, fmt.Sprintf("I%d", row), r.SettledAt.Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
