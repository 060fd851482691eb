package handlers

import (
	"github.com/roadfile/compliance/internal/app/service/order"
	"github.com/roadfile/compliance/internal/app/service/verification"
	"github.com/roadfile/compliance/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespVerifyCarrier wraps verification.Result in the standard envelope.
type RespVerifyCarrier struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    verification.Result      `json:"data"`
}

// RespPurchaseService wraps order.PurchaseServiceResult in the standard envelope.
type RespPurchaseService struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    order.PurchaseServiceResult `json:"data"`
}

// RespPurchaseBundle wraps order.PurchaseBundleResult in the standard envelope.
type RespPurchaseBundle struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    order.PurchaseBundleResult `json:"data"`
}

// RespListServices wraps order.ScanServicesResponse in the standard envelope.
type RespListServices struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    order.ScanServicesResponse `json:"data"`
}

// RespAdminLogin wraps the admin login token in the standard envelope.
type RespAdminLogin struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    adminLoginResponse       `json:"data"`
}
