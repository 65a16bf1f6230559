package catalog

import (
	"testing"
)

func ratingPtr(v float64) *float64 { return &v }

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"valid", Item{ID: "p1", Price: 9.5}, false},
		{"valid with rating", Item{ID: "p1", Price: 9.5, Rating: ratingPtr(4.2)}, false},
		{"zero price", Item{ID: "p1", Price: 0}, false},
		{"rating at bounds", Item{ID: "p1", Rating: ratingPtr(5.0)}, false},
		{"negative price", Item{ID: "p1", Price: -1}, true},
		{"rating too high", Item{ID: "p1", Rating: ratingPtr(5.1)}, true},
		{"rating negative", Item{ID: "p1", Rating: ratingPtr(-0.5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestItem_IsProduct(t *testing.T) {
	tests := []struct {
		itemType string
		want     bool
	}{
		{"", true},
		{TypeProduct, true},
		{TypeCategory, false},
		{TypeRestaurant, false},
	}

	for _, tt := range tests {
		item := Item{Type: tt.itemType}
		if got := item.IsProduct(); got != tt.want {
			t.Errorf("IsProduct() with type %q = %v, want %v", tt.itemType, got, tt.want)
		}
	}
}

func TestItem_RatingOrZero(t *testing.T) {
	if got := (Item{}).RatingOrZero(); got != 0 {
		t.Errorf("RatingOrZero() with nil rating = %v, want 0", got)
	}
	if got := (Item{Rating: ratingPtr(3.7)}).RatingOrZero(); got != 3.7 {
		t.Errorf("RatingOrZero() = %v, want 3.7", got)
	}
}
