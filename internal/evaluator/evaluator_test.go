package evaluator

import (
	"encoding/json"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/piiredact/internal/classifier"
)

func TestEvaluate_StandalonePII(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"phone", "phone", "9876543210", "98XXXXXX10"},
		{"contact", "contact", "9123456789", "91XXXXXX89"},
		{"aadhar", "aadhar", "1234 5678 9012", "XXXXXXXX9012"},
		{"address proof", "address_proof", "9876 5432 1098", "XXXXXXXX1098"},
		{"passport", "passport", "A1234567", "AXXXXXX7"},
		{"upi", "upi_id", "user@upi", "[REDACTED_UPI]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(Record{tt.field: tt.value})
			assert.True(t, res.IsPII)
			assert.Equal(t, tt.want, res.Redacted[tt.field])
			require.Len(t, res.Findings, 1)
			assert.Equal(t, tt.field, res.Findings[0].Field)
			assert.Equal(t, classifier.KindStandalone, res.Findings[0].Kind)
			assert.False(t, res.Findings[0].Escalated)
		})
	}
}

func TestEvaluate_UPIWithDottedDomainIsNotPII(t *testing.T) {
	rec := Record{"upi_id": "user@example.com"}
	redacted, isPII := Process(rec)
	assert.False(t, isPII)
	assert.Equal(t, rec, redacted)
}

func TestEvaluate_CombinatorialEscalation(t *testing.T) {
	rec := Record{
		"name":    "John Doe",
		"email":   "john@example.com",
		"address": "123 Main Street, City",
	}
	res := Evaluate(rec)
	assert.True(t, res.IsPII)
	assert.Equal(t, "JXXX DXX", res.Redacted["name"])
	assert.Equal(t, "jXXXn@example.com", res.Redacted["email"])
	assert.Equal(t, "[REDACTED_ADDRESS]", res.Redacted["address"])

	require.Len(t, res.Findings, 3)
	for _, f := range res.Findings {
		assert.True(t, f.Escalated, f.Field)
		assert.Equal(t, classifier.KindCombinatorial, f.Kind)
	}
}

func TestEvaluate_SingleCategoryDoesNotEscalate(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"device context pair", Record{"ip_address": "192.168.1.100", "device_id": "DEVICE_001"}},
		{"name only", Record{"name": "John Doe", "city": "Mumbai"}},
		{"address only", Record{"address": "123 Main Street, City"}},
		{"email only", Record{"email": "john@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redacted, isPII := Process(tt.rec)
			assert.False(t, isPII)
			assert.Equal(t, tt.rec, redacted)
		})
	}
}

func TestEvaluate_DeviceContextRedactsBothFields(t *testing.T) {
	rec := Record{
		"name":       "Priya Sharma",
		"ip_address": "10.0.0.7",
		"device_id":  "   ",
	}
	res := Evaluate(rec)
	assert.True(t, res.IsPII)
	assert.Equal(t, "PXXXX SXXXXX", res.Redacted["name"])
	assert.Equal(t, "[REDACTED_IDENTIFIER]", res.Redacted["ip_address"])
	assert.Equal(t, "[REDACTED_IDENTIFIER]", res.Redacted["device_id"], "sibling of a present category is redacted even when blank")
}

func TestEvaluate_DeviceContextSingleFieldWithOtherCategory(t *testing.T) {
	rec := Record{
		"email":     "ravi@example.in",
		"device_id": "DEVICE_001",
	}
	res := Evaluate(rec)
	assert.True(t, res.IsPII)
	assert.Equal(t, "rXXXi@example.in", res.Redacted["email"])
	assert.Equal(t, "[REDACTED_IDENTIFIER]", res.Redacted["device_id"])
	_, hasIP := res.Redacted["ip_address"]
	assert.False(t, hasIP, "absent fields are never added")
}

func TestEvaluate_NonStringSiblingIsLeftAlone(t *testing.T) {
	rec := Record{
		"name":       "John Doe",
		"ip_address": "10.0.0.7",
		"device_id":  json.Number("42"),
	}
	res := Evaluate(rec)
	assert.True(t, res.IsPII)
	assert.Equal(t, json.Number("42"), res.Redacted["device_id"])
	assert.Equal(t, "[REDACTED_IDENTIFIER]", res.Redacted["ip_address"])
}

func TestEvaluate_StandaloneAndCombinatorialTogether(t *testing.T) {
	rec := Record{
		"name":  "John Doe",
		"phone": "9876543210",
	}
	res := Evaluate(rec)
	assert.True(t, res.IsPII)
	assert.Equal(t, "98XXXXXX10", res.Redacted["phone"])
	assert.Equal(t, "John Doe", res.Redacted["name"], "one category is below the threshold")
}

func TestEvaluate_FieldWithUnmatchedStandaloneShapeIsNotCombinatorial(t *testing.T) {
	rec := Record{
		"phone":   "call me maybe",
		"address": "123 Main Street, City",
	}
	redacted, isPII := Process(rec)
	assert.False(t, isPII)
	assert.Equal(t, rec, redacted)
}

func TestEvaluate_NoPII(t *testing.T) {
	rec := Record{"age": "25", "city": "Mumbai", "occupation": "Engineer"}
	redacted, isPII := Process(rec)
	assert.False(t, isPII)
	assert.Equal(t, rec, redacted)
}

func TestEvaluate_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"empty", Record{}},
		{"non-string values", Record{"age": json.Number("25"), "active": true}},
		{"blank strings", Record{"name": "", "email": "   "}},
		{"nested values", Record{"phone": map[string]any{"n": "9876543210"}, "name": []any{"John", "Doe"}}},
		{"null", Record{"passport": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.rec)
			assert.False(t, res.IsPII)
			assert.Equal(t, tt.rec, res.Redacted)
			assert.Empty(t, res.Findings)
		})
	}
}

func TestEvaluate_NilRecord(t *testing.T) {
	res := Evaluate(nil)
	assert.False(t, res.IsPII)
	assert.NotNil(t, res.Redacted)
	assert.Empty(t, res.Redacted)
}

func TestEvaluate_DoesNotModifyInput(t *testing.T) {
	rec := Record{"phone": "9876543210", "name": "John Doe", "email": "john@example.com"}
	before := maps.Clone(rec)
	_ = Evaluate(rec)
	assert.Equal(t, before, rec)
}

func TestEvaluate_KeySetPreserved(t *testing.T) {
	records := []Record{
		{},
		{"phone": "9876543210", "misc": "x"},
		{"name": "John Doe", "email": "john@example.com", "ip_address": "1.2.3.4", "device_id": "D1", "n": json.Number("1")},
		{"upi_id": "a@b", "aadhar": "1234 5678 9012", "passport": "A1234567", "contact": "0000000000"},
		{"address": "short", "flag": false},
	}
	for _, rec := range records {
		redacted, _ := Process(rec)
		assert.Equal(t,
			slices.Sorted(maps.Keys(rec)),
			slices.Sorted(maps.Keys(redacted)))
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	records := []Record{
		{"phone": "9876543210"},
		{"aadhar": "1234 5678 9012"},
		{"passport": "A1234567"},
		{"upi_id": "user@upi"},
		{"name": "John Doe", "email": "john@example.com", "address": "123 Main Street, City"},
	}
	for _, rec := range records {
		once, _ := Process(rec)
		twice, _ := Process(once)
		assert.Equal(t, once, twice)
	}
}
