package service

import "strings"

// Mapping tables for the report aggregations. These are enumerated
// configuration data, kept separate from the aggregation logic so the
// business taxonomy can change without touching the report code.

// storageBucketNames is the canonical bucket order for the storage
// breakdown. "Other" collects versions whose document tags match nothing.
var storageBucketNames = []string{"Invoice", "Report", "Contract", "Receipt", "Other"}

// canonicalTagBuckets folds tag spelling variants into canonical storage
// buckets. Lookups are case-insensitive; keys are stored lowercase.
var canonicalTagBuckets = map[string]string{
	"invoice":    "Invoice",
	"invoices":   "Invoice",
	"bill":       "Invoice",
	"bills":      "Invoice",
	"report":     "Report",
	"reports":    "Report",
	"contract":   "Contract",
	"contracts":  "Contract",
	"agreement":  "Contract",
	"agreements": "Contract",
	"receipt":    "Receipt",
	"receipts":   "Receipt",
}

// bucketForTags returns the storage bucket for a document's tags, scanning
// them in stored order; the first tag with a canonical mapping wins.
func bucketForTags(tags []string) string {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if bucket, ok := canonicalTagBuckets[strings.ToLower(tag)]; ok {
			return bucket
		}
	}
	return "Other"
}

// departmentNames is the canonical department order for the departmental
// breakdown; every department is reported even with a zero count.
var departmentNames = []string{"Engineering", "Marketing", "Sales", "Operations", "HR", "Finance"}

// fallbackDepartment receives documents whose categories match no mapping.
const fallbackDepartment = "Operations"

// departmentForCategory maps document categories to departments.
var departmentForCategory = map[string]string{
	"Financial":  "Finance",
	"Technical":  "Engineering",
	"Marketing":  "Marketing",
	"Sales":      "Sales",
	"HR":         "HR",
	"Operations": "Operations",
}

// departmentFor classifies a document into exactly one department; the
// first category with a mapping wins.
func departmentFor(categories []string) string {
	for _, category := range categories {
		if dept, ok := departmentForCategory[category]; ok {
			return dept
		}
	}
	return fallbackDepartment
}
