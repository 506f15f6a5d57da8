package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
)

// saleWithRepairs sells n service lines and returns the sale with its tickets
func saleWithRepairs(t *testing.T, f *fixture, code string, n int) (*entity.Sale, []entity.Repair) {
	t.Helper()
	ctx := context.Background()
	svc := f.product(t, "Repair "+code, enum.ProductTypeService, 0, 0)

	items := make([]SaleItemInput, n)
	for i := range items {
		items[i] = SaleItemInput{ProductID: svc.ID, Qty: 1, UnitPrice: 250, ServiceInfo: serviceInfo()}
	}
	sale, err := f.sales.CreateSale(ctx, &CreateSaleInput{SaleCode: code, UserID: uuid.New(), Items: items})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	repairs, _, err := f.store.Repairs().List(ctx, &repository.RepairFilterParams{SaleID: &sale.ID})
	if err != nil || len(repairs) != n {
		t.Fatalf("expected %d repairs, got %d (%v)", n, len(repairs), err)
	}
	return sale, repairs
}

func saleStatus(t *testing.T, f *fixture, id uuid.UUID) enum.SaleStatus {
	t.Helper()
	sale, err := f.store.Sales().GetByID(context.Background(), id)
	if err != nil || sale == nil {
		t.Fatalf("load sale: %v", err)
	}
	return sale.Status
}

func TestMarkDeliveredRequiresCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sale, repairs := saleWithRepairs(t, f, "R-1", 1)
	id := repairs[0].ID

	for _, status := range []enum.RepairStatus{enum.RepairStatusReceived, enum.RepairStatusInProgress} {
		if status != enum.RepairStatusReceived {
			if _, err := f.repairs.PatchStatus(ctx, id, status, nil); err != nil {
				t.Fatalf("patch: %v", err)
			}
		}

		_, err := f.repairs.MarkDelivered(ctx, id)
		assertCode(t, err, http.StatusBadRequest)

		repair, _ := f.repairs.GetRepair(ctx, id)
		if repair.Status != status {
			t.Errorf("rejected delivery changed status from %s to %s", status, repair.Status)
		}
		if saleStatus(t, f, sale.ID) != enum.SaleStatusPending {
			t.Error("rejected delivery changed the sale")
		}
	}

	if _, err := f.repairs.PatchStatus(ctx, id, enum.RepairStatusCompleted, nil); err != nil {
		t.Fatalf("patch: %v", err)
	}
	repair, err := f.repairs.MarkDelivered(ctx, id)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if repair.Status != enum.RepairStatusDelivered {
		t.Errorf("expected delivered, got %s", repair.Status)
	}
	if saleStatus(t, f, sale.ID) != enum.SaleStatusCompleted {
		t.Error("expected the single-repair sale to complete")
	}

	// delivering twice is rejected, the sale stays completed
	_, err = f.repairs.MarkDelivered(ctx, id)
	assertCode(t, err, http.StatusBadRequest)
}

func TestMarkDeliveredUnknownRepair(t *testing.T) {
	f := newFixture(t)
	_, err := f.repairs.MarkDelivered(context.Background(), uuid.New())
	assertCode(t, err, http.StatusNotFound)
}

func TestSaleCompletesOnlyWhenEveryRepairIsDelivered(t *testing.T) {
	orders := map[string][]int{
		"forward":  {0, 1, 2},
		"backward": {2, 1, 0},
		"middle":   {1, 0, 2},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			sale, repairs := saleWithRepairs(t, f, "R-"+name, 3)

			for _, r := range repairs {
				if _, err := f.repairs.PatchStatus(ctx, r.ID, enum.RepairStatusCompleted, nil); err != nil {
					t.Fatalf("patch: %v", err)
				}
			}

			for step, idx := range order {
				if _, err := f.repairs.MarkDelivered(ctx, repairs[idx].ID); err != nil {
					t.Fatalf("deliver %d: %v", idx, err)
				}
				want := enum.SaleStatusPending
				if step == len(order)-1 {
					want = enum.SaleStatusCompleted
				}
				if got := saleStatus(t, f, sale.ID); got != want {
					t.Fatalf("after %d deliveries: sale %s, want %s", step+1, got, want)
				}
			}
		})
	}
}

func TestPatchStatusDeliveredRunsCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sale, repairs := saleWithRepairs(t, f, "R-P", 2)

	note := "replaced flex cable"
	for _, r := range repairs {
		repair, err := f.repairs.PatchStatus(ctx, r.ID, enum.RepairStatusDelivered, &note)
		if err != nil {
			t.Fatalf("patch: %v", err)
		}
		if repair.Revision != note {
			t.Errorf("expected revision %q, got %q", note, repair.Revision)
		}
	}

	if saleStatus(t, f, sale.ID) != enum.SaleStatusCompleted {
		t.Error("expected sale completed after patching every repair to delivered")
	}
}

func TestPatchStatusErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, repairs := saleWithRepairs(t, f, "R-E", 1)

	_, err := f.repairs.PatchStatus(ctx, uuid.New(), enum.RepairStatusCompleted, nil)
	assertCode(t, err, http.StatusNotFound)

	_, err = f.repairs.PatchStatus(ctx, repairs[0].ID, enum.RepairStatus("cancelled"), nil)
	assertCode(t, err, http.StatusBadRequest)
}

func TestRepairListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, repairs := saleWithRepairs(t, f, "R-L", 3)

	if _, err := f.repairs.PatchStatus(ctx, repairs[0].ID, enum.RepairStatusCompleted, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.repairs.PatchStatus(ctx, repairs[1].ID, enum.RepairStatusDelivered, nil); err != nil {
		t.Fatal(err)
	}

	active, err := f.repairs.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != repairs[2].ID {
		t.Errorf("expected only the received ticket active, got %d", len(active))
	}

	deliverable, err := f.repairs.ListDeliverable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(deliverable) != 1 || deliverable[0].ID != repairs[0].ID {
		t.Errorf("expected only the completed ticket deliverable, got %d", len(deliverable))
	}

	all, err := f.repairs.ListAll(ctx, &repository.RepairFilterParams{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Pagination.Total != 3 {
		t.Errorf("expected 3 repairs in history, got %d", all.Pagination.Total)
	}
}

func TestUpdateDetailsKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, repairs := saleWithRepairs(t, f, "R-U", 1)
	id := repairs[0].ID

	if _, err := f.repairs.PatchStatus(ctx, id, enum.RepairStatusInProgress, nil); err != nil {
		t.Fatal(err)
	}

	brand := "Motorola"
	repair, err := f.repairs.UpdateDetails(ctx, id, &UpdateRepairInput{Brand: &brand})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repair.Brand != brand || repair.Model != "A52" {
		t.Errorf("unexpected details: %+v", repair)
	}
	if repair.Status != enum.RepairStatusInProgress {
		t.Errorf("details update changed status to %s", repair.Status)
	}

	_, err = f.repairs.UpdateDetails(ctx, uuid.New(), &UpdateRepairInput{Brand: &brand})
	assertCode(t, err, http.StatusNotFound)
}

func TestDeleteLastUndeliveredRepairCompletesSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sale, repairs := saleWithRepairs(t, f, "R-DEL", 2)

	if _, err := f.repairs.PatchStatus(ctx, repairs[0].ID, enum.RepairStatusDelivered, nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if got := saleStatus(t, f, sale.ID); got != enum.SaleStatusPending {
		t.Fatalf("sale with one open repair: got %s, want pending", got)
	}

	if err := f.repairs.DeleteRepair(ctx, repairs[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := saleStatus(t, f, sale.ID); got != enum.SaleStatusCompleted {
		t.Errorf("sale after deleting its only open repair: got %s, want completed", got)
	}

	assertCode(t, f.repairs.DeleteRepair(ctx, repairs[1].ID), http.StatusNotFound)
}

func TestDeleteRepairKeepsSalePendingWhileOthersAreOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sale, repairs := saleWithRepairs(t, f, "R-DEL2", 3)

	if err := f.repairs.DeleteRepair(ctx, repairs[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := saleStatus(t, f, sale.ID); got != enum.SaleStatusPending {
		t.Errorf("got %s, want pending", got)
	}
}
