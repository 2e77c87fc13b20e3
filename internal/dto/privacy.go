package dto

import (
	"time"

	"storepulse/internal/domain"
)

type CustomerExportResponse struct {
	Sales      []SaleDTO `json:"sales"`
	ExportedAt time.Time `json:"exportedAt"`
}

type AnonymizeResponse struct {
	AnonymizedSales int    `json:"anonymizedSales"`
	Message         string `json:"message"`
}

func FromCustomerExport(e domain.CustomerExport) CustomerExportResponse {
	return CustomerExportResponse{Sales: FromSales(e.Sales), ExportedAt: e.ExportedAt}
}
