package repository

import (
	"context"
	"fmt"

	"fronteira/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, price, stock, active, weight_kg, pickup_enabled, created_at`

// GetAll retrieves active products with their variants, paginated.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE active = TRUE
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product rows")
		return nil, err
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with its variants, or nil if absent.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active, &p.WeightKg, &p.PickupEnabled, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	products := []model.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return &products[0], nil
}

// GetByIDs retrieves the requested products keyed by id, variants included.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	if len(ids) == 0 {
		return map[string]model.Product{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1)`, productColumns)

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product rows")
		return nil, err
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	catalog := make(map[string]model.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return catalog, nil
}

// DecrementStock conditionally reduces stock within the transaction. Products
// whose stock lives on variant rows are decremented there; for the rest the
// check and decrement happen in one statement so two concurrent orders cannot
// both pass the stock check.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error) {
	variantBacked, ok, err := r.decrementVariantStock(ctx, tx, productID, quantity)
	if err != nil {
		return false, err
	}
	if variantBacked {
		if !ok {
			r.logger.Warn().
				Str("product_id", productID).
				Int("quantity", quantity).
				Msg("stock decrement rejected, insufficient variant stock at write time")
		}
		return ok, nil
	}

	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("stock decrement rejected, insufficient stock at write time")
		return false, nil
	}

	return true, nil
}

// decrementVariantStock consumes quantity across a product's active variant
// rows, smallest names first. The SELECT FOR UPDATE serialises concurrent
// orders on the same variants. Returns variantBacked=false when the product
// has no active variants, leaving the product-level path to handle it.
func (r *productRepository) decrementVariantStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (variantBacked, ok bool, err error) {
	rows, err := tx.Query(ctx, `
		SELECT id, stock
		FROM product_variants
		WHERE product_id = $1 AND active = TRUE
		ORDER BY name, id
		FOR UPDATE
	`, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to lock variant rows")
		return false, false, fmt.Errorf("failed to lock variants: %w", err)
	}

	type variantRow struct {
		id    string
		stock int
	}
	var variants []variantRow
	available := 0
	for rows.Next() {
		var v variantRow
		if err := rows.Scan(&v.id, &v.stock); err != nil {
			rows.Close()
			return false, false, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
		available += v.stock
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return false, false, fmt.Errorf("error iterating variants: %w", err)
	}
	rows.Close()

	if len(variants) == 0 {
		return false, false, nil
	}
	if available < quantity {
		return true, false, nil
	}

	remaining := quantity
	for _, v := range variants {
		if remaining == 0 {
			break
		}
		take := v.stock
		if take > remaining {
			take = remaining
		}
		if take == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE product_variants SET stock = stock - $2 WHERE id = $1`, v.id, take); err != nil {
			r.logger.Error().Err(err).Str("variant_id", v.id).Msg("failed to decrement variant stock")
			return true, false, fmt.Errorf("failed to decrement variant stock: %w", err)
		}
		remaining -= take
	}

	return true, true, nil
}

// attachVariants loads the variants for the given products in one query.
func (r *productRepository) attachVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	query := `
		SELECT id, product_id, name, stock, price_adjustment, active
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query product variants")
		return fmt.Errorf("failed to query product variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Stock, &v.PriceAdjustment, &v.Active); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return fmt.Errorf("error iterating variants: %w", err)
	}

	return nil
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active, &p.WeightKg, &p.PickupEnabled, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
