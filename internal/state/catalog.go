package state

import (
	"context"
	"slices"

	"github.com/five82/nixtrack/internal/nixtrack"
)

// CatalogAPI is the catalog slice of the API client.
type CatalogAPI interface {
	Countries(ctx context.Context) ([]nixtrack.Country, error)
	Departments(ctx context.Context, countryCode string) ([]nixtrack.Department, error)
	Cities(ctx context.Context, q nixtrack.CityQuery) ([]nixtrack.City, error)
	TrackStatuses(ctx context.Context) ([]nixtrack.TrackStatus, error)
}

// CatalogState is a copy of the lookup lists and the current cascade selection.
type CatalogState struct {
	Countries   []nixtrack.Country
	Departments []nixtrack.Department
	Cities      []nixtrack.City
	Statuses    []nixtrack.TrackStatus

	Country    string
	Department string
	City       string

	Loading bool
	Error   string
}

// Catalog drives the country → department → city cascade used by forms.
// Changing a level clears every selection below it and reloads the next level.
type Catalog struct {
	core
	api CatalogAPI

	countries   []nixtrack.Country
	departments []nixtrack.Department
	cities      []nixtrack.City
	statuses    []nixtrack.TrackStatus

	country    string
	department string
	city       string
}

// NewCatalog builds an empty catalog.
func NewCatalog(api CatalogAPI, opts Options) *Catalog {
	c := &Catalog{api: api}
	c.setup("catalog", opts)
	return c
}

// Snapshot returns a copy of the current state.
func (c *Catalog) Snapshot() CatalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CatalogState{
		Countries:   slices.Clone(c.countries),
		Departments: slices.Clone(c.departments),
		Cities:      slices.Clone(c.cities),
		Statuses:    slices.Clone(c.statuses),
		Country:     c.country,
		Department:  c.department,
		City:        c.city,
		Loading:     c.track.loading(),
		Error:       c.err,
	}
}

// LoadCountries loads the supported countries.
func (c *Catalog) LoadCountries(ctx context.Context) error {
	var items []nixtrack.Country
	return c.run(OpList, true, func() error {
		var err error
		items, err = c.api.Countries(ctx)
		return err
	}, func(err error) {
		if err != nil {
			c.fail(err, "Error al cargar países")
			return
		}
		c.countries = items
	})
}

// SelectCountry selects code, clears the department, city and city list,
// and loads the country's departments.
func (c *Catalog) SelectCountry(ctx context.Context, code string) error {
	c.mu.Lock()
	c.country = code
	c.department = ""
	c.city = ""
	c.cities = nil
	c.track.invalidate(OpCities)
	c.mu.Unlock()

	return c.loadDepartments(ctx, code)
}

// SelectDepartment selects code, clears the city and loads the department's cities.
func (c *Catalog) SelectDepartment(ctx context.Context, code string) error {
	c.mu.Lock()
	c.department = code
	c.city = ""
	c.mu.Unlock()

	return c.loadCities(ctx, nixtrack.CityQuery{DepartmentCode: code})
}

// SelectCity selects a city code.
func (c *Catalog) SelectCity(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.city = code
}

// SearchCities loads cities matching search within the selected department.
func (c *Catalog) SearchCities(ctx context.Context, search string) error {
	c.mu.RLock()
	department := c.department
	c.mu.RUnlock()
	return c.loadCities(ctx, nixtrack.CityQuery{DepartmentCode: department, Search: search})
}

// LoadStatuses loads the order status catalog.
func (c *Catalog) LoadStatuses(ctx context.Context) error {
	var items []nixtrack.TrackStatus
	return c.run(OpStatuses, true, func() error {
		var err error
		items, err = c.api.TrackStatuses(ctx)
		return err
	}, func(err error) {
		if err != nil {
			c.fail(err, "Error al cargar estados")
			return
		}
		c.statuses = items
	})
}

func (c *Catalog) loadDepartments(ctx context.Context, country string) error {
	var items []nixtrack.Department
	return c.run(OpDepartments, true, func() error {
		var err error
		items, err = c.api.Departments(ctx, country)
		return err
	}, func(err error) {
		if err != nil {
			c.fail(err, "Error al cargar departamentos")
			return
		}
		c.departments = items
	})
}

func (c *Catalog) loadCities(ctx context.Context, q nixtrack.CityQuery) error {
	var items []nixtrack.City
	return c.run(OpCities, true, func() error {
		var err error
		items, err = c.api.Cities(ctx, q)
		return err
	}, func(err error) {
		if err != nil {
			c.fail(err, "Error al cargar ciudades")
			return
		}
		c.cities = items
	})
}
