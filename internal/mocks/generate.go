// Package mocks provides mock implementations of the portal's backend ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gw := mocks.NewMockBillingGateway(ctrl)
//	gw.EXPECT().Status(gomock.Any(), "token").Return(billing.BillingStatus{}, nil)
package mocks

// Generate mock for BillingGateway interface from internal/ports package.
// Methods: Status, Checkout, Portal, Cancel, Resume
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=billing_gateway_mock.go github.com/stagepass/portal/internal/ports BillingGateway

// Generate mock for ResourceClient interface from internal/ports package.
// Methods: List, Get, Create, Update, Delete, Upload
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_client_mock.go github.com/stagepass/portal/internal/ports ResourceClient

// Generate mock for ContactSender interface from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=contact_sender_mock.go github.com/stagepass/portal/internal/ports ContactSender
