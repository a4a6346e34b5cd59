package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cine-pos/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCustomerService is a mock implementation of CustomerService.
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) FindCustomer(ctx context.Context, document string) (*model.Customer, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerService) RegisterCustomer(ctx context.Context, req *model.CustomerRequest) (*model.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func TestCustomerHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockCustomerService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: `{"document":"123.456.789-00","name":"Maria Silva"}`,
			setupMock: func(m *MockCustomerService) {
				m.On("RegisterCustomer", mock.Anything, &model.CustomerRequest{Document: "123.456.789-00", Name: "Maria Silva"}).
					Return(&model.Customer{ID: 1, Document: "123.456.789-00", Name: "Maria Silva"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Invalid document",
			body: `{"document":"123","name":"Maria"}`,
			setupMock: func(m *MockCustomerService) {
				m.On("RegisterCustomer", mock.Anything, mock.Anything).Return(nil, model.ErrInvalidDocument)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidDocument,
		},
		{
			name:           "Malformed JSON",
			body:           `{"document":`,
			setupMock:      func(m *MockCustomerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCustomerService)
			tt.setupMock(svc)
			h := NewCustomerHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Register(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCustomerHandler_GetByDocument(t *testing.T) {
	tests := []struct {
		name           string
		mockReturn     *model.Customer
		mockError      error
		expectedStatus int
	}{
		{name: "Found", mockReturn: &model.Customer{ID: 1, Name: "Maria Silva"}, expectedStatus: http.StatusOK},
		{name: "Not found", mockError: model.ErrCustomerNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCustomerService)
			if tt.mockReturn != nil {
				svc.On("FindCustomer", mock.Anything, "123.456.789-00").Return(tt.mockReturn, nil)
			} else {
				svc.On("FindCustomer", mock.Anything, "123.456.789-00").Return(nil, tt.mockError)
			}
			h := NewCustomerHandler(svc, zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, "/api/customers/123.456.789-00", nil)
			req.SetPathValue("document", "123.456.789-00")
			w := httptest.NewRecorder()
			h.GetByDocument(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
