package favorites

import (
	"reflect"
	"testing"

	"github.com/mmcdole/atelier/internal/domain"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name        string
		local       domain.FavoriteSet
		remote      domain.FavoriteSet
		want        domain.FavoriteSet
		wantChanged bool
	}{
		{
			name:        "overlapping sets",
			local:       domain.FavoriteSet{1, 2},
			remote:      domain.FavoriteSet{2, 3},
			want:        domain.FavoriteSet{1, 2, 3},
			wantChanged: true,
		},
		{
			name:        "server only adds",
			local:       domain.FavoriteSet{10},
			remote:      domain.FavoriteSet{20},
			want:        domain.FavoriteSet{10, 20},
			wantChanged: true,
		},
		{
			name:        "identical sets",
			local:       domain.FavoriteSet{10},
			remote:      domain.FavoriteSet{10},
			want:        domain.FavoriteSet{10},
			wantChanged: false,
		},
		{
			name:        "same members in another order",
			local:       domain.FavoriteSet{3, 1, 2},
			remote:      domain.FavoriteSet{1, 2, 3},
			want:        domain.FavoriteSet{3, 1, 2},
			wantChanged: false,
		},
		{
			name:        "empty local adopts server order",
			local:       domain.FavoriteSet{},
			remote:      domain.FavoriteSet{5, 4},
			want:        domain.FavoriteSet{5, 4},
			wantChanged: false,
		},
		{
			name:        "empty server gets everything",
			local:       domain.FavoriteSet{7, 8},
			remote:      domain.FavoriteSet{},
			want:        domain.FavoriteSet{7, 8},
			wantChanged: true,
		},
		{
			name:        "both empty",
			local:       nil,
			remote:      nil,
			want:        domain.FavoriteSet{},
			wantChanged: false,
		},
		{
			name:        "duplicates collapse",
			local:       domain.FavoriteSet{1, 1, 2},
			remote:      domain.FavoriteSet{3, 3, 2},
			want:        domain.FavoriteSet{1, 2, 3},
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Merge(tt.local, tt.remote)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge(%v, %v) = %v, want %v", tt.local, tt.remote, got, tt.want)
			}
			if changed != tt.wantChanged {
				t.Errorf("Merge(%v, %v) changed = %v, want %v", tt.local, tt.remote, changed, tt.wantChanged)
			}
		})
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	local := domain.FavoriteSet{1, 2}
	merged, _ := Merge(local, domain.FavoriteSet{3})
	merged[0] = 99
	if local[0] != 1 {
		t.Fatalf("Merge result aliases local input: %v", local)
	}
}

func TestMerge_IsStableWhenRepeated(t *testing.T) {
	first, _ := Merge(domain.FavoriteSet{4, 1}, domain.FavoriteSet{1, 9})
	second, changed := Merge(first, first)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second merge = %v, want %v", second, first)
	}
	if changed {
		t.Fatal("merging a set with itself should not report a change")
	}
}

func TestSubtract(t *testing.T) {
	got := Subtract(domain.FavoriteSet{3, 1, 4, 5}, domain.FavoriteSet{4, 9, 3})
	if !reflect.DeepEqual(got, domain.FavoriteSet{1, 5}) {
		t.Fatalf("Subtract = %v, want [1 5]", got)
	}
	if got := Subtract(nil, domain.FavoriteSet{1}); got == nil || len(got) != 0 {
		t.Fatalf("Subtract of nil = %#v, want empty set", got)
	}
}
