package model

import (
	"slices"
	"sort"
)

// CategoryRegistry holds the category names available for income and expense.
type CategoryRegistry map[Kind][]string

// DefaultCategories is used when the owner has no categories stored.
func DefaultCategories() CategoryRegistry {
	return CategoryRegistry{
		KindIncome:  {"Freelance", "Inversión", "Otros Ingresos", "Regalo", "Salario"},
		KindExpense: {"Alquiler", "Comida", "Deudas", "Entretenimiento", "Otros Gastos", "Servicios", "Transporte"},
	}
}

// Has reports whether name is registered for kind.
func (r CategoryRegistry) Has(kind Kind, name string) bool {
	return slices.Contains(r[kind], name)
}

// Add registers name under kind keeping the list sorted. It reports false when
// the name was already present.
func (r CategoryRegistry) Add(kind Kind, name string) bool {
	if r.Has(kind, name) {
		return false
	}
	names := append(slices.Clone(r[kind]), name)
	sort.Strings(names)
	r[kind] = names
	return true
}

// Remove drops name from kind. It reports false when the name was not present.
func (r CategoryRegistry) Remove(kind Kind, name string) bool {
	idx := slices.Index(r[kind], name)
	if idx < 0 {
		return false
	}
	r[kind] = slices.Delete(slices.Clone(r[kind]), idx, idx+1)
	return true
}

// Clone returns a deep copy.
func (r CategoryRegistry) Clone() CategoryRegistry {
	out := make(CategoryRegistry, len(r))
	for k, names := range r {
		out[k] = slices.Clone(names)
	}
	return out
}

// Members is the sorted set of household labels attachable to transactions.
type Members []string

// Has reports whether name is a known member.
func (m Members) Has(name string) bool {
	return slices.Contains(m, name)
}

// With returns a sorted copy including name.
func (m Members) With(name string) Members {
	out := append(slices.Clone(m), name)
	sort.Strings(out)
	return out
}

// Without returns a copy with name removed.
func (m Members) Without(name string) Members {
	return slices.DeleteFunc(slices.Clone(m), func(s string) bool { return s == name })
}
