package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks de repositorio
// ──────────────────────────────────────────────────────────────────────────────

type mockWarehouseRepo struct{ mock.Mock }

func (m *mockWarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockWarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*entity.Warehouse)
	return w, args.Error(1)
}

func (m *mockWarehouseRepo) GetByCode(ctx context.Context, code string) (*entity.Warehouse, error) {
	args := m.Called(ctx, code)
	w, _ := args.Get(0).(*entity.Warehouse)
	return w, args.Error(1)
}

func (m *mockWarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockWarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*entity.Warehouse)
	return list, args.Error(1)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	args := m.Called(ctx, sku)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*entity.Product)
	return list, args.Error(1)
}

// ──────────────────────────────────────────────────────────────────────────────
// NormalizeCode
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "BOD-Ñ1", usecase.NormalizeCode("  bod-ñ1 "))
	assert.Equal(t, "TOR-001", usecase.NormalizeCode("tor-001"))
	assert.Equal(t, "", usecase.NormalizeCode("   "))
}

// ──────────────────────────────────────────────────────────────────────────────
// Bodegas
// ──────────────────────────────────────────────────────────────────────────────

func TestWarehouseUseCase_Create(t *testing.T) {
	repo := new(mockWarehouseRepo)
	repo.On("GetByCode", mock.Anything, "CEN").Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(w *entity.Warehouse) bool {
		return w.Code == "CEN" && w.Type == entity.WarehouseTypeMain && w.Status == entity.WarehouseStatusActive && w.ID != ""
	})).Return(nil).Once()

	out, err := usecase.NewWarehouseUseCase(repo).Create(context.Background(), dto.CreateWarehouseRequest{Name: " Central ", Code: "cen"})
	require.NoError(t, err)
	assert.Equal(t, "Central", out.Name)
	assert.Equal(t, "CEN", out.Code)
	repo.AssertExpectations(t)
}

func TestWarehouseUseCase_CreateCodigoDuplicado(t *testing.T) {
	repo := new(mockWarehouseRepo)
	repo.On("GetByCode", mock.Anything, "CEN").Return(&entity.Warehouse{ID: "w-1", Code: "CEN"}, nil).Once()

	_, err := usecase.NewWarehouseUseCase(repo).Create(context.Background(), dto.CreateWarehouseRequest{Name: "Otra", Code: "Cen"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWarehouseUseCase_CreateTipoInvalido(t *testing.T) {
	repo := new(mockWarehouseRepo)
	_, err := usecase.NewWarehouseUseCase(repo).Create(context.Background(), dto.CreateWarehouseRequest{Name: "X", Code: "X", Type: "virtual"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWarehouseUseCase_GetByIDNoExiste(t *testing.T) {
	repo := new(mockWarehouseRepo)
	repo.On("GetByID", mock.Anything, "nope").Return(nil, nil).Once()

	_, err := usecase.NewWarehouseUseCase(repo).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_Create(t *testing.T) {
	repo := new(mockProductRepo)
	repo.On("GetBySKU", mock.Anything, "TOR-001").Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil).Once()

	out, err := usecase.NewProductUseCase(repo).Create(context.Background(), dto.CreateProductRequest{
		SKU: "tor-001", Name: "Tornillo", ReorderLevel: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	assert.Equal(t, "TOR-001", out.SKU)
	assert.Equal(t, "unit", out.UnitMeasure)
	assert.True(t, decimal.NewFromInt(15).Equal(out.ReorderLevel))
	repo.AssertExpectations(t)
}

func TestProductUseCase_CreateRechazos(t *testing.T) {
	repo := new(mockProductRepo)
	repo.On("GetBySKU", mock.Anything, "DUP").Return(&entity.Product{ID: "p-1", SKU: "DUP"}, nil).Once()
	uc := usecase.NewProductUseCase(repo)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "dup", Name: "Duplicado"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{SKU: "neg", Name: "Negativo", ReorderLevel: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{SKU: "fra", Name: "Fracción", ReorderLevel: decimal.RequireFromString("0.00001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{SKU: "big", Name: "Enorme", ReorderLevel: decimal.RequireFromString("1e15")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{SKU: " ", Name: "Sin SKU"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUseCase_UpdateNivelDeReordenFueraDeRango(t *testing.T) {
	repo := new(mockProductRepo)
	repo.On("GetByID", mock.Anything, "p-1").Return(&entity.Product{ID: "p-1", SKU: "TOR-001"}, nil).Once()

	level := decimal.RequireFromString("3.14159")
	_, err := usecase.NewProductUseCase(repo).Update(context.Background(), "p-1", dto.UpdateProductRequest{ReorderLevel: &level})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductUseCase_ErrorDeRepositorio(t *testing.T) {
	repo := new(mockProductRepo)
	boom := errors.New("conexión perdida")
	repo.On("GetByID", mock.Anything, "p-1").Return(nil, boom).Once()

	_, err := usecase.NewProductUseCase(repo).GetByID(context.Background(), "p-1")
	assert.ErrorIs(t, err, boom)
}
