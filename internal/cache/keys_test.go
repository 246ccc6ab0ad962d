package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "report",
			objectType:  "student",
			identifier:  "123",
			paramsKey:   nil,
			expectedKey: "gradebook:report:student:123",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "report",
			objectType:  "student",
			identifier:  "123",
			paramsKey:   []string{},
			expectedKey: "gradebook:report:student:123",
		},
		{
			name:        "with one paramsKey",
			serviceName: "exam",
			objectType:  "catalog",
			identifier:  "all",
			paramsKey:   []string{"v1"},
			expectedKey: "gradebook:exam:catalog:all:v1",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "admin",
			objectType:  "matrix",
			identifier:  "scores",
			paramsKey:   []string{"p1", "p2", "p3"},
			expectedKey: "gradebook:admin:matrix:scores:p1_p2_p3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}
