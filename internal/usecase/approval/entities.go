package approval

import (
	domain "agritrace-backend/internal/domain/approval"
)

type SubmitInput struct {
	BatchID           string  `json:"batch_id"`
	CropName          string  `json:"crop_name"`
	DistributorID     int64   `json:"distributor_id"`
	DistributorName   string  `json:"distributor_name"`
	QuantityReceived  float64 `json:"quantity_received"`
	PurchasePrice     float64 `json:"purchase_price"`
	TransportDetails  string  `json:"transport_details"`
	WarehouseLocation string  `json:"warehouse_location"`
	HandoverDate      int64   `json:"handover_date"`
	FarmerEmail       string  `json:"farmer_email"`
}

type ApprovalDTO struct {
	ApprovalID        string  `json:"approval_id"`
	BatchID           string  `json:"batch_id"`
	CropName          string  `json:"crop_name"`
	DistributorID     int64   `json:"distributor_id"`
	DistributorName   string  `json:"distributor_name"`
	QuantityReceived  float64 `json:"quantity_received"`
	PurchasePrice     float64 `json:"purchase_price"`
	TransportDetails  string  `json:"transport_details"`
	WarehouseLocation string  `json:"warehouse_location"`
	HandoverDate      int64   `json:"handover_date"`
	FarmerEmail       string  `json:"farmer_email"`
	Status            string  `json:"status"`
	DistributorTxHash string  `json:"distributor_tx_hash,omitempty"`
	FarmerTxHash      string  `json:"farmer_tx_hash,omitempty"`
	CreatedAt         int64   `json:"created_at"`
	UpdatedAt         int64   `json:"updated_at"`
}

func toDTO(a *domain.Approval) *ApprovalDTO {
	dto := &ApprovalDTO{
		ApprovalID:        a.ApprovalID,
		BatchID:           a.BatchID,
		CropName:          a.CropName,
		DistributorID:     a.DistributorID,
		DistributorName:   a.DistributorName,
		QuantityReceived:  a.QuantityReceived,
		PurchasePrice:     a.PurchasePrice,
		TransportDetails:  a.TransportDetails,
		WarehouseLocation: a.WarehouseLocation,
		HandoverDate:      a.HandoverDate,
		FarmerEmail:       a.FarmerEmail,
		Status:            string(a.Status),
		CreatedAt:         a.CreatedAt.Unix(),
		UpdatedAt:         a.UpdatedAt.Unix(),
	}
	if a.DistributorTxHash != nil {
		dto.DistributorTxHash = *a.DistributorTxHash
	}
	if a.FarmerTxHash != nil {
		dto.FarmerTxHash = *a.FarmerTxHash
	}
	return dto
}

// DTOs converts a result set for JSON delivery. Exported because the sync
// stream handler serializes poller snapshots with the same shape the list
// endpoints use.
func DTOs(list []domain.Approval) []ApprovalDTO {
	out := make([]ApprovalDTO, 0, len(list))
	for i := range list {
		out = append(out, *toDTO(&list[i]))
	}
	return out
}
