package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

// conditionKeys extracts the field keys of a filter's must conditions.
func conditionKeys(t *testing.T, f *qdrant.Filter) map[string]string {
	t.Helper()
	keys := make(map[string]string)
	for _, cond := range f.Must {
		field := cond.GetField()
		if field == nil {
			t.Fatal("condition is not a field condition")
		}
		keys[field.Key] = field.GetMatch().GetKeyword()
	}
	return keys
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   map[string]string
	}{
		{
			name:   "file scope",
			filter: Filter{FileID: "file-1", UserID: "user-1"},
			want:   map[string]string{"fileId": "file-1", "userId": "user-1"},
		},
		{
			name:   "folder scope with member file",
			filter: Filter{FileID: "file-1", FolderID: "folder-1", UserID: "user-1"},
			want:   map[string]string{"fileId": "file-1", "folderId": "folder-1", "userId": "user-1"},
		},
		{
			name:   "user id always present",
			filter: Filter{UserID: "user-1"},
			want:   map[string]string{"userId": "user-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conditionKeys(t, buildFilter(tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("buildFilter() produced %d conditions, want %d", len(got), len(tt.want))
			}
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("condition %q = %q, want %q", key, got[key], want)
				}
			}
		})
	}
}

func TestBuildFilter_OmitsUnsetScopeKeys(t *testing.T) {
	keys := conditionKeys(t, buildFilter(Filter{FileID: "file-1", UserID: "user-1"}))
	if _, ok := keys["folderId"]; ok {
		t.Error("buildFilter() added a folderId condition for an unset folder")
	}
}

func TestNewQdrantStore(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "standard url", url: "http://localhost:6333", wantErr: false},
		{name: "no port", url: "http://localhost", wantErr: false},
		{name: "invalid url", url: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewQdrantStore(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("NewQdrantStore() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewQdrantStore() error = %v", err)
			}
			if store == nil {
				t.Fatal("NewQdrantStore() returned nil store")
			}
		})
	}
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name string
		in   *qdrant.Value
		want any
	}{
		{name: "string", in: qdrant.NewValueString("chunk text"), want: "chunk text"},
		{name: "integer", in: qdrant.NewValueInt(7), want: int64(7)},
		{name: "bool", in: qdrant.NewValueBool(true), want: true},
		{name: "double", in: qdrant.NewValueDouble(0.5), want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertValue(tt.in); got != tt.want {
				t.Errorf("convertValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}
