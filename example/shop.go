package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/pressgate"
	"github.com/dmitrymomot/pressgate/pkg/db"
	"github.com/dmitrymomot/pressgate/pkg/response"
)

// Shop serves a small catalogue in front of the CMS. Without a database it
// answers from a fixed list.
type Shop struct {
	db *pgxpool.Pool
}

type product struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

var catalogue = []product{
	{ID: 1, Title: "Mug", Price: 1200},
	{ID: 2, Title: "Poster", Price: 2500},
}

func (s *Shop) Routes(r *pressgate.Router) {
	r.Group(pressgate.Group{Prefix: "/shop", Name: "shop"}, func(r *pressgate.Router) {
		r.Get("/", s.index).Name("index")
		r.Get("/products/{id}", s.show).Name("product").RequireNum("id")
		if s.db != nil {
			r.Post("/products/{id}/views", s.countView).RequireNum("id").Middleware("db_transaction")
		}
	})
	r.PermanentRedirect("/store", "/shop")

	r.API("/wp-json/shop", func(r *pressgate.Router) {
		r.Get("/products", s.index).Name("api.products")
	})
	r.AdminPage("shop-status", s.status).Name("admin.shop")
}

func (s *Shop) index(r *http.Request) (*response.Response, error) {
	products, err := s.list(r.Context())
	if err != nil {
		return nil, err
	}
	return response.JSON(http.StatusOK, products)
}

func (s *Shop) show(r *http.Request) (*response.Response, error) {
	p, err := s.find(r.Context(), pressgate.Param[int](r, "id"))
	if err != nil {
		return nil, err
	}
	return response.JSON(http.StatusOK, p)
}

func (s *Shop) countView(r *http.Request) (*response.Response, error) {
	id := pressgate.Param[int](r, "id")
	tag, err := db.Conn(r.Context(), s.db).Exec(r.Context(), "UPDATE products SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return nil, pressgate.ErrInternal("could not count view", pressgate.WithError(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, pressgate.ErrNotFound("product not found")
	}
	return response.NoContent(), nil
}

func (s *Shop) status(r *http.Request) (*response.Response, error) {
	u, err := pressgate.URL(r, "shop.index", nil)
	if err != nil {
		return nil, err
	}
	products, err := s.list(r.Context())
	if err != nil {
		return nil, err
	}
	return response.Render(r.Context(), http.StatusOK, statusPage(u, len(products)))
}

func (s *Shop) list(ctx context.Context) ([]product, error) {
	if s.db == nil {
		return catalogue, nil
	}
	rows, err := s.db.Query(ctx, "SELECT id, title, price FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[product])
}

func (s *Shop) find(ctx context.Context, id int) (product, error) {
	if s.db == nil {
		for _, p := range catalogue {
			if p.ID == id {
				return p, nil
			}
		}
		return product{}, pressgate.ErrNotFound("product not found")
	}

	var p product
	err := s.db.QueryRow(ctx, "SELECT id, title, price FROM products WHERE id = $1", id).Scan(&p.ID, &p.Title, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return product{}, pressgate.ErrNotFound("product not found")
	}
	return p, err
}
