package store

import (
	"database/sql"
	"fmt"

	"famili/internal/model"
)

type ShopStore struct {
	db *sql.DB
}

func NewShopStore(db *sql.DB) *ShopStore {
	return &ShopStore{db: db}
}

// --- Item methods ---

func scanItem(scanner interface{ Scan(...any) error }) (*model.ShopItem, error) {
	var it model.ShopItem
	err := scanner.Scan(&it.ID, &it.Title, &it.Description, &it.Price, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

const itemCols = `id, title, description, price, created_at, updated_at`

func (s *ShopStore) CreateItem(title, description string, price int) (*model.ShopItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO shop_items (title, description, price) VALUES (?, ?, ?)`,
		title, description, price,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ShopStore) GetItemByID(id int64) (*model.ShopItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM shop_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ListItems returns all shop items, newest first.
func (s *ShopStore) ListItems() ([]model.ShopItem, error) {
	rows, err := s.db.Query(`SELECT ` + itemCols + ` FROM shop_items ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShopItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *ShopStore) UpdateItem(id int64, title, description string, price int) (*model.ShopItem, error) {
	_, err := s.db.Exec(
		`UPDATE shop_items SET title = ?, description = ?, price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, price, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ShopStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shop_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// --- Purchase methods ---

func scanPurchase(scanner interface{ Scan(...any) error }) (*model.Purchase, error) {
	var p model.Purchase
	err := scanner.Scan(&p.ID, &p.UserID, &p.ItemID, &p.PricePaid, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const purchaseCols = `id, user_id, item_id, price_paid, status, created_at`

func (s *ShopStore) GetPurchaseByID(id int64) (*model.Purchase, error) {
	row := s.db.QueryRow(`SELECT `+purchaseCols+` FROM purchases WHERE id = ?`, id)
	p, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

func (s *ShopStore) ListPurchasesByUser(userID int64) ([]model.Purchase, error) {
	rows, err := s.db.Query(
		`SELECT `+purchaseCols+` FROM purchases WHERE user_id = ? ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases by user: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

// ListPendingPurchases returns all ordered purchases joined with buyer and
// item, newest first. This feeds the parent approval queue.
func (s *ShopStore) ListPendingPurchases() ([]model.PendingPurchase, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.user_id, p.item_id, p.price_paid, p.status, p.created_at,
		       u.name, i.title
		FROM purchases p
		JOIN users u ON u.id = p.user_id
		JOIN shop_items i ON i.id = p.item_id
		WHERE p.status = ?
		ORDER BY p.created_at DESC, p.id DESC`,
		string(model.PurchaseOrdered),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.PendingPurchase
	for rows.Next() {
		var p model.PendingPurchase
		err := rows.Scan(
			&p.ID, &p.UserID, &p.ItemID, &p.PricePaid, &p.Status, &p.CreatedAt,
			&p.UserName, &p.ItemTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
