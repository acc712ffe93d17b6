package domain

import "strings"

// CatalogItem — позиция из внешнего каталога (ответ провайдера).
type CatalogItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Seller   string  `json:"seller"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url,omitempty"`
}

// Query — поисковый запрос к каталогу: строка поиска + тип запроса
// (например "search", "sold"). Тип входит в ключ кэша, чтобы разные
// виды выборок по одной строке не перетирали друг друга.
type Query struct {
	Term string `json:"term"`
	Kind string `json:"kind"`
}

// Normalized — возвращает запрос с нормализованными полями
// (обрезанные пробелы, нижний регистр, дефолтный тип "search").
func (q Query) Normalized() Query {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	kind := strings.ToLower(strings.TrimSpace(q.Kind))
	if kind == "" {
		kind = "search"
	}
	return Query{Term: term, Kind: kind}
}

// CacheKey — стабильный ключ кэша для нормализованного запроса.
func (q Query) CacheKey() string {
	n := q.Normalized()
	return n.Kind + ":" + n.Term
}

// IsEmpty — запрос без строки поиска не имеет смысла.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Term) == ""
}
