package store

import (
	"testing"

	"famili/internal/model"
)

func TestShopItemCRUD(t *testing.T) {
	ss := NewShopStore(setupTestDB(t))

	item, err := ss.CreateItem("Movie night", "You pick", 50)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Title != "Movie night" {
		t.Errorf("title = %q, want %q", item.Title, "Movie night")
	}
	if item.Price != 50 {
		t.Errorf("price = %d, want 50", item.Price)
	}

	updated, err := ss.UpdateItem(item.ID, "Movie night", "You pick, everyone watches", 60)
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Price != 60 {
		t.Errorf("updated price = %d, want 60", updated.Price)
	}

	if err := ss.DeleteItem(item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	got, err := ss.GetItemByID(item.ID)
	if err != nil {
		t.Fatalf("get deleted item: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted item")
	}
}

func TestListPendingPurchases(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewShopStore(db)

	robin, _ := us.Create("Robin", "ext-robin", model.RoleChild, false)
	item, _ := ss.CreateItem("Ice cream", "", 40)

	db.Exec(
		`INSERT INTO purchases (user_id, item_id, price_paid, status) VALUES (?, ?, ?, 'ordered')`,
		robin.ID, item.ID, 40,
	)
	db.Exec(
		`INSERT INTO purchases (user_id, item_id, price_paid, status) VALUES (?, ?, ?, 'fulfilled')`,
		robin.ID, item.ID, 40,
	)

	pending, err := ss.ListPendingPurchases()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len = %d, want 1", len(pending))
	}
	p := pending[0]
	if p.Status != model.PurchaseOrdered {
		t.Errorf("status = %q, want ordered", p.Status)
	}
	if p.UserName != "Robin" {
		t.Errorf("user_name = %q, want Robin", p.UserName)
	}
	if p.ItemTitle != "Ice cream" {
		t.Errorf("item_title = %q, want Ice cream", p.ItemTitle)
	}
	if p.PricePaid != 40 {
		t.Errorf("price_paid = %d, want 40", p.PricePaid)
	}
}

func TestPurchasePriceSurvivesItemRepricing(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ss := NewShopStore(db)

	robin, _ := us.Create("Robin", "ext-robin", model.RoleChild, false)
	item, _ := ss.CreateItem("Screen time", "", 30)

	res, err := db.Exec(
		`INSERT INTO purchases (user_id, item_id, price_paid, status) VALUES (?, ?, ?, 'ordered')`,
		robin.ID, item.ID, 30,
	)
	if err != nil {
		t.Fatalf("insert purchase: %v", err)
	}
	purchaseID, _ := res.LastInsertId()

	if _, err := ss.UpdateItem(item.ID, "Screen time", "", 99); err != nil {
		t.Fatalf("reprice item: %v", err)
	}

	p, err := ss.GetPurchaseByID(purchaseID)
	if err != nil {
		t.Fatalf("get purchase: %v", err)
	}
	if p.PricePaid != 30 {
		t.Errorf("price_paid = %d, want 30 after repricing", p.PricePaid)
	}
}
