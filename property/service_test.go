package property

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.Create(context.Background(), CreateParams{
		PropertyType: TypeFlat,
		Price:        decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrUnitNoRequired) {
		t.Fatalf("expected ErrUnitNoRequired, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateParams{
		UnitNo: "A-101",
		Price:  decimal.NewFromInt(-1),
	})
	if !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateParams{
		UnitNo:       "A-101",
		PropertyType: Type("villa"),
		Price:        decimal.NewFromInt(100),
	}); err == nil {
		t.Fatal("expected error for invalid property type")
	}
}

func TestService_CreateDefaultsTypeAndStartsFree(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	unit, err := svc.Create(context.Background(), CreateParams{
		UnitNo: "B-204",
		Price:  decimal.NewFromInt(2500000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if unit.PropertyType != TypeFlat {
		t.Fatalf("expected default type flat, got %s", unit.PropertyType)
	}
	if unit.Status != StatusFree {
		t.Fatalf("expected new unit to be free, got %s", unit.Status)
	}
}

func TestService_CreateDuplicateUnit(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	params := CreateParams{UnitNo: "C-1", PropertyType: TypePlot, Price: decimal.NewFromInt(100)}
	if _, err := svc.Create(context.Background(), params); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), params); !errors.Is(err, ErrDuplicateUnit) {
		t.Fatalf("expected ErrDuplicateUnit, got %v", err)
	}
}

func TestService_ListFilterValidation(t *testing.T) {
	svc := NewService(newFakeRepository())

	if _, err := svc.List(context.Background(), ListFilters{Status: Status("alloted")}); err == nil {
		t.Fatal("expected error for misspelled status filter")
	}
	if _, err := svc.List(context.Background(), ListFilters{PropertyType: Type("castle")}); err == nil {
		t.Fatal("expected error for invalid type filter")
	}
}

func TestService_UpdateKeepsOmittedFields(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	unit, err := svc.Create(context.Background(), CreateParams{
		UnitNo:       "D-7",
		PropertyType: TypeShop,
		Block:        "D",
		Price:        decimal.NewFromInt(900000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newBlock := "E"
	updated, err := svc.Update(context.Background(), unit.ID, UpdateParams{Block: &newBlock})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Block != "E" {
		t.Fatalf("expected block E, got %s", updated.Block)
	}
	if updated.UnitNo != "D-7" || updated.PropertyType != TypeShop {
		t.Fatalf("expected untouched fields to survive, got %+v", updated)
	}
}

func TestService_UpdateNotFound(t *testing.T) {
	svc := NewService(newFakeRepository())

	block := "Z"
	if _, err := svc.Update(context.Background(), "missing", UpdateParams{Block: &block}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeRepository struct {
	unitsByID map[string]Unit
	unitNos   map[string]bool
	nextID    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		unitsByID: make(map[string]Unit),
		unitNos:   make(map[string]bool),
		nextID:    1,
	}
}

func (f *fakeRepository) Create(_ context.Context, params CreateParams) (Unit, error) {
	if f.unitNos[params.UnitNo] {
		return Unit{}, ErrDuplicateUnit
	}
	unit := Unit{
		ID:           fmt.Sprintf("prop-%d", f.nextID),
		UnitNo:       params.UnitNo,
		PropertyType: params.PropertyType,
		Block:        params.Block,
		SizeSqft:     params.SizeSqft,
		Price:        params.Price,
		Status:       StatusFree,
		BrokerID:     params.BrokerID,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.nextID++
	f.unitsByID[unit.ID] = unit
	f.unitNos[unit.UnitNo] = true
	return unit, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (Unit, error) {
	unit, ok := f.unitsByID[id]
	if !ok {
		return Unit{}, ErrNotFound
	}
	return unit, nil
}

func (f *fakeRepository) List(_ context.Context, filters ListFilters) ([]Unit, error) {
	out := make([]Unit, 0, len(f.unitsByID))
	for _, unit := range f.unitsByID {
		if filters.Status != "" && unit.Status != filters.Status {
			continue
		}
		if filters.PropertyType != "" && unit.PropertyType != filters.PropertyType {
			continue
		}
		if filters.Block != "" && unit.Block != filters.Block {
			continue
		}
		out = append(out, unit)
	}
	return out, nil
}

func (f *fakeRepository) UpdateDetails(_ context.Context, id string, params UpdateParams) (Unit, error) {
	unit, ok := f.unitsByID[id]
	if !ok {
		return Unit{}, ErrNotFound
	}
	if params.UnitNo != nil {
		unit.UnitNo = *params.UnitNo
	}
	if params.Block != nil {
		unit.Block = *params.Block
	}
	if params.SizeSqft != nil {
		unit.SizeSqft = *params.SizeSqft
	}
	if params.Price != nil {
		unit.Price = *params.Price
	}
	if params.BrokerID != nil {
		unit.BrokerID = params.BrokerID
	}
	unit.UpdatedAt = time.Now().UTC()
	f.unitsByID[id] = unit
	return unit, nil
}
