package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	ComplaintText string `json:"complaintText"`
}

// UpdateStatusRequest payload for POST /api/department/update-status.
type UpdateStatusRequest struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
}

// RouteComplaintRequest payload.
type RouteComplaintRequest struct {
	DepartmentID string `json:"departmentId"`
}

// ComplaintResponse mirrors the stored complaint.
type ComplaintResponse struct {
	ID                    string                       `json:"id"`
	UserID                string                       `json:"userId"`
	ComplaintText         string                       `json:"complaintText"`
	Category              string                       `json:"category"`
	CategoryConfidence    float64                      `json:"categoryConfidence"`
	AlternativeCategories []domain.AlternativeCategory `json:"alternativeCategories"`
	RecommendedDepartment string                       `json:"recommendedDepartment"`
	KeywordsFound         []string                     `json:"keywordsFound"`
	Explanation           domain.Explanation           `json:"explanation"`
	Status                domain.ComplaintStatus       `json:"status"`
	RoutingState          domain.RoutingState          `json:"routingState"`
	DepartmentID          *string                      `json:"departmentId"`
	CreatedAt             time.Time                    `json:"createdAt"`
	UpdatedAt             time.Time                    `json:"updatedAt"`
}

// ComplaintDetailResponse adds the audit trail.
type ComplaintDetailResponse struct {
	ComplaintResponse
	History []ComplaintHistoryResponse `json:"history"`
}

// ComplaintHistoryResponse is one audit entry.
type ComplaintHistoryResponse struct {
	ID            string                     `json:"id"`
	ChangeType    domain.ComplaintChangeType `json:"changeType"`
	ChangedByKind domain.IdentityKind        `json:"changedByKind"`
	ChangedByID   *string                    `json:"changedById"`
	OldValue      map[string]any             `json:"oldValue,omitempty"`
	NewValue      map[string]any             `json:"newValue,omitempty"`
	CreatedAt     time.Time                  `json:"createdAt"`
}
