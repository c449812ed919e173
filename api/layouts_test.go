package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/seatmap"
	"github.com/Domenick1991/tourbooking/internal/service/layouts"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLayoutUseCase struct {
	mock.Mock
}

func (m *MockLayoutUseCase) Preview(cfg domain.BusConfiguration) (*layouts.Preview, error) {
	args := m.Called(cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layouts.Preview), args.Error(1)
}

func (m *MockLayoutUseCase) Configure(ctx context.Context, packageID string, cfg domain.BusConfiguration) (*layouts.View, error) {
	args := m.Called(ctx, packageID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layouts.View), args.Error(1)
}

func (m *MockLayoutUseCase) Get(ctx context.Context, packageID string) (*layouts.View, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*layouts.View), args.Error(1)
}

func (m *MockLayoutUseCase) BlockSeats(ctx context.Context, packageID string, seatIDs []string, reason string) (*seatmap.BulkResult, error) {
	args := m.Called(ctx, packageID, seatIDs, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.BulkResult), args.Error(1)
}

func (m *MockLayoutUseCase) UnblockSeats(ctx context.Context, packageID string, seatIDs []string) (*seatmap.BulkResult, error) {
	args := m.Called(ctx, packageID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.BulkResult), args.Error(1)
}

func sleeperConfig() domain.BusConfiguration {
	return domain.BusConfiguration{
		VehicleCategory: domain.VehicleBus,
		NumberOfFloors:  1,
		LowerDeck: domain.FloorConfiguration{
			Arrangement: domain.Arrangement2x1,
			SerialStart: "A",
			SerialEnd:   "B",
		},
	}
}

func TestLayoutHandler_Preview(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockLayoutUseCase)
	handler := NewLayoutHandler(mockService)

	cfg := sleeperConfig()
	body, err := json.Marshal(cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/layouts/preview", bytes.NewReader(body))

	cfg.TotalSeats = 6
	mockService.On("Preview", sleeperConfig()).
		Return(&layouts.Preview{Configuration: cfg}, nil)

	handler.preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got layouts.Preview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 6, got.Configuration.TotalSeats)
}

func TestLayoutHandler_Preview_InvalidConfiguration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockLayoutUseCase)
	handler := NewLayoutHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/layouts/preview", bytes.NewReader([]byte(`{"number_of_floors":3}`)))

	mockService.On("Preview", mock.Anything).
		Return(nil, domain.InvalidConfiguration("number of floors must be 1 or 2"))

	handler.preview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var got errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "invalid configuration", got.Kind)
}

func TestLayoutHandler_Configure_Occupied(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockLayoutUseCase)
	handler := NewLayoutHandler(mockService)

	body, err := json.Marshal(sleeperConfig())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("PUT", "/packages/pkg-1/layout", bytes.NewReader(body))
	c.Params = gin.Params{{Key: "id", Value: "pkg-1"}}

	mockService.On("Configure", c.Request.Context(), "pkg-1", sleeperConfig()).
		Return(nil, domain.InvalidState("package pkg-1 has 2 occupied seats"))

	handler.configure(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestLayoutHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockLayoutUseCase)
	handler := NewLayoutHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/packages/pkg-1/layout", nil)
	c.Params = gin.Params{{Key: "id", Value: "pkg-1"}}

	view := &layouts.View{Layout: domain.SeatLayout{PackageID: "pkg-1"}, Available: 6}
	mockService.On("Get", c.Request.Context(), "pkg-1").Return(view, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"package_id":"pkg-1"`)
}

func TestLayoutHandler_Block(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockLayoutUseCase)
	handler := NewLayoutHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/packages/pkg-1/seats/block",
		bytes.NewReader([]byte(`{"seat_ids":["L-A1","L-A2"],"reason":"driver"}`)))
	c.Params = gin.Params{{Key: "id", Value: "pkg-1"}}

	result := &seatmap.BulkResult{Updated: []string{"L-A1"}, Failed: []seatmap.SeatFailure{{SeatID: "L-A2"}}}
	mockService.On("BlockSeats", c.Request.Context(), "pkg-1", []string{"L-A1", "L-A2"}, "driver").Return(result, nil)

	handler.block(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got seatmap.BulkResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"L-A1"}, got.Updated)
	require.Len(t, got.Failed, 1)
}

func TestLayoutHandler_Unblock_MissingSeatIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockLayoutUseCase)
	handler := NewLayoutHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/packages/pkg-1/seats/unblock", bytes.NewReader([]byte(`{}`)))
	c.Params = gin.Params{{Key: "id", Value: "pkg-1"}}

	handler.unblock(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "UnblockSeats", mock.Anything, mock.Anything, mock.Anything)
}
