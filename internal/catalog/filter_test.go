package catalog

import "testing"

func TestFilterMatches(t *testing.T) {
	t.Parallel()

	mods := sampleModules()
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero matches all", Filter{}, []string{"python-basics", "numpy", "xarray"}},
		{"title substring case-insensitive", Filter{Text: "NUMPY"}, []string{"numpy"}},
		{"description substring", Filter{Text: "netcdf d"}, []string{"xarray"}},
		{"keyword substring", Filter{Text: "clim"}, []string{"xarray"}},
		{"category exact", Filter{Category: "core"}, []string{"python-basics", "numpy"}},
		{"category is not a substring match", Filter{Category: "cor"}, nil},
		{"text and category combine", Filter{Text: "array", Category: "core"}, []string{"numpy"}},
		{"no match", Filter{Text: "fortran"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.filter.Apply(mods)
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() returned %d modules, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.ID != tt.want[i] {
					t.Errorf("Apply()[%d] = %q, want %q", i, m.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterIsZero(t *testing.T) {
	t.Parallel()
	if !(Filter{Text: "   "}).IsZero() {
		t.Error("whitespace-only text should be zero")
	}
	if (Filter{Category: "core"}).IsZero() {
		t.Error("category filter is not zero")
	}
}
