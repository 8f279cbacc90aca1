package document

// LayoutItem is one planned fixture on a site-map (electrical layout)
// document: a point to install in a given room on a given floor.
type LayoutItem struct {
	Floor    string
	Room     string
	Name     string
	Code     string
	Quantity int
}

// FloorPage is one rendered site-map page. Page numbering restarts on every
// floor, so "Page 2 of 3" always reads within the current floor section.
type FloorPage struct {
	Floor      string
	Items      []LayoutItem
	PageNumber int
	TotalPages int
}

// LayoutItemsPerPage is the fixed row capacity of a site-map page.
const LayoutItemsPerPage = 15

// PaginateLayout groups items by floor in first-appearance order and chunks
// each floor independently. Item order within a floor is preserved.
func PaginateLayout(items []LayoutItem, perPage int) ([]FloorPage, error) {
	if perPage <= 0 {
		return nil, &ConfigError{Field: "perPage", Value: perPage}
	}

	var floors []string
	byFloor := make(map[string][]LayoutItem)
	for _, it := range items {
		if _, ok := byFloor[it.Floor]; !ok {
			floors = append(floors, it.Floor)
		}
		byFloor[it.Floor] = append(byFloor[it.Floor], it)
	}

	var pages []FloorPage
	for _, floor := range floors {
		rows := byFloor[floor]
		total := (len(rows) + perPage - 1) / perPage
		for i := 0; i < len(rows); i += perPage {
			end := i + perPage
			if end > len(rows) {
				end = len(rows)
			}
			pages = append(pages, FloorPage{
				Floor:      floor,
				Items:      rows[i:end],
				PageNumber: i/perPage + 1,
				TotalPages: total,
			})
		}
	}
	return pages, nil
}
