package service

import (
	"context"
	"math"
	"sort"
	"time"

	"dms/internal/model"
	"dms/internal/repository"
)

// StorageBucket is one canonical bucket of the storage breakdown.
type StorageBucket struct {
	Name    string `json:"name"`
	Bytes   int64  `json:"bytes"`
	Percent int    `json:"percent"`
}

// StorageReport sums consumed storage across every version of every
// document, bucketed by the parent document's tags.
type StorageReport struct {
	TotalBytes int64           `json:"total_bytes"`
	Buckets    []StorageBucket `json:"buckets"`
}

// DepartmentStat is one department's share of the document corpus.
type DepartmentStat struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// ActivityPoint is a per-month upload count.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StoragePoint is a per-month sum of version byte sizes.
type StoragePoint struct {
	Date  string `json:"date"`
	Bytes int64  `json:"bytes"`
}

// CategoryCount is one entry of the category histogram.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ActivityReport carries the time-bucketed series for the dashboard:
// uploads per calendar month, stored bytes per version-creation month, and
// the top categories by frequency.
type ActivityReport struct {
	Uploads       []ActivityPoint `json:"uploads"`
	Storage       []StoragePoint  `json:"storage"`
	TopCategories []CategoryCount `json:"top_categories"`
}

// MetricsReport is the dashboard summary card data.
type MetricsReport struct {
	TotalStorageBytes  int64   `json:"total_storage_bytes"`
	DocumentCount      int     `json:"document_count"`
	ActiveUploaders    int     `json:"active_uploaders"`
	TotalUsers         int     `json:"total_users"`
	ActiveUploaderRate float64 `json:"active_uploader_rate"`
}

// monthLabel is the display format of a month bucket, e.g. "Jan 06".
const monthLabel = "Jan 06"

// maxSeriesPoints caps each time series at the most recent buckets.
const maxSeriesPoints = 15

// maxTopCategories caps the category histogram.
const maxTopCategories = 10

// ReportService computes read-only aggregate reports over the full
// document and version corpus. Every report tolerates an empty corpus.
type ReportService interface {
	Storage(ctx context.Context) (*StorageReport, error)
	Departments(ctx context.Context) ([]DepartmentStat, error)
	Activity(ctx context.Context) (*ActivityReport, error)
	Metrics(ctx context.Context) (*MetricsReport, error)
}

type reportService struct {
	docs     repository.DocumentRepository
	versions repository.VersionRepository
	users    repository.UserRepository
}

// NewReportService constructs a new ReportService.
func NewReportService(docs repository.DocumentRepository, versions repository.VersionRepository, users repository.UserRepository) ReportService {
	return &reportService{docs: docs, versions: versions, users: users}
}

// Storage sums byte sizes across ALL versions, not just the latest, so the
// total reflects true consumed storage. Each version contributes to the
// bucket derived from its parent document's tags.
func (s *reportService) Storage(ctx context.Context) (*StorageReport, error) {
	docs, versionsByDoc, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	bucketBytes := make(map[string]int64, len(storageBucketNames))
	var total int64
	for _, d := range docs {
		bucket := bucketForTags(d.Tags)
		for _, v := range versionsByDoc[d.ID] {
			total += v.Size
			bucketBytes[bucket] += v.Size
		}
	}

	percents := splitPercentages(bucketBytes, total)
	buckets := make([]StorageBucket, len(storageBucketNames))
	for i, name := range storageBucketNames {
		buckets[i] = StorageBucket{Name: name, Bytes: bucketBytes[name], Percent: percents[i]}
	}
	return &StorageReport{TotalBytes: total, Buckets: buckets}, nil
}

// splitPercentages rounds each bucket's share to an integer percentage and
// reconciles rounding drift by adding the residual to the single largest
// bucket, so the set sums to exactly 100 when total > 0 and to 0 otherwise.
func splitPercentages(bucketBytes map[string]int64, total int64) []int {
	percents := make([]int, len(storageBucketNames))
	if total <= 0 {
		return percents
	}
	sum := 0
	for i, name := range storageBucketNames {
		percents[i] = int(math.Round(float64(bucketBytes[name]) / float64(total) * 100))
		sum += percents[i]
	}
	largest := 0
	for i, p := range percents {
		if p > percents[largest] {
			largest = i
		}
	}
	percents[largest] += 100 - sum
	return percents
}

// Departments classifies each document into exactly one department and
// reports counts with rounded shares, largest share first. The shares are
// independently rounded and not forced to sum to 100.
func (s *reportService) Departments(ctx context.Context) ([]DepartmentStat, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(departmentNames))
	for _, d := range docs {
		counts[departmentFor(d.Categories)]++
	}

	total := len(docs)
	stats := make([]DepartmentStat, len(departmentNames))
	for i, name := range departmentNames {
		percent := 0
		if total > 0 {
			percent = int(math.Round(float64(counts[name]) / float64(total) * 100))
		}
		stats[i] = DepartmentStat{Name: name, Count: counts[name], Percent: percent}
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Percent > stats[j].Percent })
	return stats, nil
}

// Activity builds both monthly series chronologically ascending, truncated
// to the most recent buckets, plus the category histogram.
func (s *reportService) Activity(ctx context.Context) (*ActivityReport, error) {
	docs, versionsByDoc, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	uploadsByMonth := make(map[time.Time]int)
	bytesByMonth := make(map[time.Time]int64)
	categoryCounts := make(map[string]int)
	for _, d := range docs {
		uploadsByMonth[monthOf(d.UploadedOn)]++
		for _, c := range d.Categories {
			categoryCounts[c]++
		}
		for _, v := range versionsByDoc[d.ID] {
			bytesByMonth[monthOf(v.CreatedAt)] += v.Size
		}
	}

	uploads := make([]ActivityPoint, 0, len(uploadsByMonth))
	for _, m := range recentMonths(uploadsByMonth) {
		uploads = append(uploads, ActivityPoint{Date: m.Format(monthLabel), Count: uploadsByMonth[m]})
	}
	storagePoints := make([]StoragePoint, 0, len(bytesByMonth))
	for _, m := range recentMonthsBytes(bytesByMonth) {
		storagePoints = append(storagePoints, StoragePoint{Date: m.Format(monthLabel), Bytes: bytesByMonth[m]})
	}

	return &ActivityReport{
		Uploads:       uploads,
		Storage:       storagePoints,
		TopCategories: topCategories(categoryCounts),
	}, nil
}

// Metrics reports corpus-wide totals for the dashboard summary.
func (s *reportService) Metrics(ctx context.Context) (*MetricsReport, error) {
	docs, versionsByDoc, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	owners := make(map[string]bool)
	for _, d := range docs {
		owners[d.OwnerID] = true
		for _, v := range versionsByDoc[d.ID] {
			total += v.Size
		}
	}

	rate := 0.0
	if len(users) > 0 {
		rate = float64(len(owners)) / float64(len(users))
	}
	return &MetricsReport{
		TotalStorageBytes:  total,
		DocumentCount:      len(docs),
		ActiveUploaders:    len(owners),
		TotalUsers:         len(users),
		ActiveUploaderRate: rate,
	}, nil
}

// loadCorpus fetches all documents and batch-loads their versions in one
// query instead of one per document.
func (s *reportService) loadCorpus(ctx context.Context) ([]model.Document, map[string][]model.DocumentVersion, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	versionsByDoc, err := s.versions.ListByDocumentIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return docs, versionsByDoc, nil
}

func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// recentMonths returns the map's keys chronologically ascending, keeping
// only the most recent maxSeriesPoints entries.
func recentMonths(byMonth map[time.Time]int) []time.Time {
	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	return truncateMonths(months)
}

func recentMonthsBytes(byMonth map[time.Time]int64) []time.Time {
	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	return truncateMonths(months)
}

func truncateMonths(months []time.Time) []time.Time {
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	if len(months) > maxSeriesPoints {
		months = months[len(months)-maxSeriesPoints:]
	}
	return months
}

// topCategories sorts the histogram by count descending (name ascending on
// ties, for determinism) and keeps the top entries.
func topCategories(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > maxTopCategories {
		out = out[:maxTopCategories]
	}
	return out
}
