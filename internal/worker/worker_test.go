package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/crc-worker/internal/domain"
	"github.com/jonesrussell/crc-worker/internal/logging"
	"github.com/jonesrussell/crc-worker/internal/match"
	"github.com/jonesrussell/crc-worker/internal/search"
	"github.com/jonesrussell/crc-worker/internal/telemetry"
)

// One provider per test binary; promauto registers into the global registry.
var (
	testProvider *telemetry.Provider
	providerOnce sync.Once
)

func getProvider() *telemetry.Provider {
	providerOnce.Do(func() { testProvider = telemetry.NewProvider() })
	return testProvider
}

type fakeQueue struct {
	idx      string
	req      *domain.VerificationRequest
	claimed  bool
	statuses []string
}

func (f *fakeQueue) ClaimNext(_ context.Context) (string, error) {
	if f.claimed || f.idx == "" {
		return "", nil
	}
	f.claimed = true
	return f.idx, nil
}

func (f *fakeQueue) Request(_ context.Context, _ string) (*domain.VerificationRequest, error) {
	return f.req, nil
}

func (f *fakeQueue) SetStatus(_ context.Context, _, _, status string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

type fakeLocations struct {
	loc domain.Location
	err error
}

func (f *fakeLocations) ByPincode(_ context.Context, _ string) (domain.Location, error) {
	return f.loc, f.err
}

type fakeLegal struct {
	green []domain.LegalCode
	red   []domain.LegalCode
}

func (f *fakeLegal) GreenCodes(_ context.Context) ([]domain.LegalCode, error) { return f.green, nil }
func (f *fakeLegal) RedCodes(_ context.Context) ([]domain.LegalCode, error)   { return f.red, nil }

type fakeReports struct {
	resultHits []*domain.CaseHit
	report     *domain.Report
	courtNames []string
	saveErr    error
}

func (f *fakeReports) SaveOutcome(_ context.Context, _ *domain.VerificationRequest, _ time.Time, report domain.Report, hits []*domain.CaseHit) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.resultHits = hits
	f.report = &report
	return nil
}

func (f *fakeReports) CourtNames(_ context.Context, _, _ string) ([]string, error) {
	return f.courtNames, nil
}

type fakeRetriever struct {
	hits []*domain.CaseHit
	err  error
}

func (f *fakeRetriever) Retrieve(_ context.Context, queries []search.Query, _ int) ([][]*domain.CaseHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	sets := make([][]*domain.CaseHit, len(queries))
	for i := range sets {
		sets[i] = []*domain.CaseHit{}
	}
	if len(sets) > 0 {
		sets[0] = f.hits
	}
	return sets, nil
}

type fakeDocuments struct{}

func (fakeDocuments) CaseDetailsURL(_ context.Context, cnr string) (string, error) {
	return "https://docs.example.com/html_v1/" + cnr + ".html", nil
}

func (fakeDocuments) OrderCopyURL(_ context.Context, cnr string) (string, error) {
	return "https://docs.example.com/order_copy/" + cnr + ".pdf", nil
}

type fakeDetails struct {
	rows []domain.ActSectionRow
}

func (f *fakeDetails) ActSections(_ context.Context, _, _ string) ([]domain.ActSectionRow, error) {
	return f.rows, nil
}

type fakeNotifier struct {
	refIDs []string
}

func (f *fakeNotifier) Notify(_ context.Context, refID string) (int, error) {
	f.refIDs = append(f.refIDs, refID)
	return 200, nil
}

type fakeGeocodes struct {
	courts map[string][]match.Coordinate
}

func (f *fakeGeocodes) StationCoordinates(_ context.Context, _ []string) (map[string][]match.Coordinate, error) {
	return nil, nil
}

func (f *fakeGeocodes) CourtCoordinates(_ context.Context, _ []string) (map[string][]match.Coordinate, error) {
	return f.courts, nil
}

type fixture struct {
	queue    *fakeQueue
	reports  *fakeReports
	notifier *fakeNotifier
	worker   *Worker
}

func newFixture(locations *fakeLocations, retriever *fakeRetriever, details *fakeDetails) *fixture {
	queue := &fakeQueue{
		idx: "req-1",
		req: &domain.VerificationRequest{
			ID:         "req-1",
			EmpID:      "emp-1",
			Name:       "Ram Kumar",
			FatherName: "Shyam Singh",
			Pincode:    "110001",
			State:      "delhi",
			District:   "new delhi",
		},
	}
	reports := &fakeReports{courtNames: []string{"district court tis hazari"}}
	notifier := &fakeNotifier{}
	legal := &fakeLegal{
		green: []domain.LegalCode{{Act: "Motor Vehicles Act", Code: "184"}},
		red:   []domain.LegalCode{{Act: "IPC", Code: "302"}},
	}
	geocodes := &fakeGeocodes{courts: map[string][]match.Coordinate{
		"DLCT01": {{Latitude: 28.61, Longitude: 77.21}},
	}}

	w := New(
		queue,
		locations,
		legal,
		reports,
		retriever,
		match.NewDistanceResolver(geocodes),
		fakeDocuments{},
		details,
		notifier,
		getProvider(),
		logging.NewNop(),
		Config{ResultSize: 100},
	)

	return &fixture{queue: queue, reports: reports, notifier: notifier, worker: w}
}

func delhiLocation() *fakeLocations {
	return &fakeLocations{loc: domain.Location{
		District:  "new delhi",
		State:     "delhi",
		Latitude:  28.6139,
		Longitude: 77.2090,
	}}
}

func matchingHit() *domain.CaseHit {
	return &domain.CaseHit{
		CNR:          "DLCT010012342020",
		Name:         "ram kumar",
		Relative:     "shyam singh",
		PartyType:    "respondent",
		CaseDistrict: "new delhi",
		CaseState:    "delhi",
	}
}

func TestWorker_EmptyQueue(t *testing.T) {
	f := newFixture(delhiLocation(), &fakeRetriever{}, &fakeDetails{})
	f.queue.idx = ""

	claimed, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Nil(t, f.reports.report)
}

func TestWorker_GreenCase(t *testing.T) {
	details := &fakeDetails{rows: []domain.ActSectionRow{
		{Act: "Motor Vehicles Act", Section: "184"},
	}}
	f := newFixture(delhiLocation(), &fakeRetriever{hits: []*domain.CaseHit{matchingHit()}}, details)

	claimed, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)
	require.True(t, claimed)

	require.NotNil(t, f.reports.report)
	report := f.reports.report
	assert.Equal(t, domain.CodeCompletedGreen, report.Status)
	assert.Equal(t, domain.StatusGreen, report.Result)
	assert.Equal(t, "req-1", report.VerifyID)
	assert.Equal(t, "emp-1", report.ServiceRequestID)
	assert.Equal(t, []string{"district court tis hazari"}, report.Jurisdiction.CourtNames)

	require.Len(t, report.MatchedCaseDetails, 1)
	hit := report.MatchedCaseDetails[0]
	assert.Equal(t, domain.StatusGreen, hit.Status)
	assert.Equal(t, "Motor Vehicles Act", hit.Act)
	assert.Equal(t, []string{"184"}, hit.Section)
	assert.NotEmpty(t, hit.CaseDetailsURL)
	assert.Greater(t, hit.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, hit.ConfidenceScore, 1.0)

	assert.NotNil(t, f.reports.resultHits)
	assert.Empty(t, f.queue.statuses, "completed status commits with the outcome")
	assert.Equal(t, []string{"req-1"}, f.notifier.refIDs)
}

func TestWorker_RedCase(t *testing.T) {
	details := &fakeDetails{rows: []domain.ActSectionRow{
		{Act: "IPC", Section: "302, 34"},
	}}
	f := newFixture(delhiLocation(), &fakeRetriever{hits: []*domain.CaseHit{matchingHit()}}, details)

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	require.NotNil(t, f.reports.report)
	assert.Equal(t, domain.CodeCompletedRed, f.reports.report.Status)
	assert.Equal(t, domain.StatusRed, f.reports.report.Result)
	assert.Empty(t, f.reports.report.Jurisdiction.CourtNames)
	assert.Empty(t, f.queue.statuses, "completed status commits with the outcome")
}

func TestWorker_NoCaseFound(t *testing.T) {
	f := newFixture(delhiLocation(), &fakeRetriever{}, &fakeDetails{})

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	require.NotNil(t, f.reports.report)
	assert.Equal(t, domain.CodeNoCaseFound, f.reports.report.Status)
	assert.Equal(t, domain.StatusGreen, f.reports.report.Result)
	assert.Equal(t, []string{"district court tis hazari"}, f.reports.report.Jurisdiction.CourtNames)
	assert.Empty(t, f.reports.report.MatchedCaseDetails)
	assert.Nil(t, f.reports.resultHits)
	assert.Empty(t, f.queue.statuses, "completed status commits with the outcome")
	assert.Equal(t, []string{"req-1"}, f.notifier.refIDs)
}

func TestWorker_PincodeNotFound(t *testing.T) {
	locations := &fakeLocations{err: domain.NewPincodeNotFound("110001")}
	f := newFixture(locations, &fakeRetriever{}, &fakeDetails{})

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	require.NotNil(t, f.reports.report)
	assert.Equal(t, domain.CodePincodeNotFound, f.reports.report.Status)
	assert.Equal(t, domain.StatusRed, f.reports.report.Result)
	assert.Empty(t, f.reports.report.Jurisdiction.CourtNames)
	assert.Empty(t, f.queue.statuses, "completed status commits with the outcome")
}

func TestWorker_ActSectionNotFound(t *testing.T) {
	// Documents exist but no acts table row could be extracted.
	f := newFixture(delhiLocation(), &fakeRetriever{hits: []*domain.CaseHit{matchingHit()}}, &fakeDetails{})

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	require.NotNil(t, f.reports.report)
	assert.Equal(t, domain.CodeActSectionNotFound, f.reports.report.Status)
	assert.Equal(t, domain.StatusRed, f.reports.report.Result)
}

func TestWorker_SearchIndexUnreachable(t *testing.T) {
	// An index outage is not an empty cascade: the run must fail rather
	// than report no cases found.
	retriever := &fakeRetriever{err: errors.New("retrieve candidates: search name: index unreachable: connection refused")}
	f := newFixture(delhiLocation(), retriever, &fakeDetails{})

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	assert.Nil(t, f.reports.report, "no report when the index was unreachable")
	assert.Equal(t, []string{domain.JobStatusFailed}, f.queue.statuses)
	assert.Empty(t, f.notifier.refIDs)
}

func TestWorker_OutcomePersistFailure(t *testing.T) {
	details := &fakeDetails{rows: []domain.ActSectionRow{
		{Act: "Motor Vehicles Act", Section: "184"},
	}}
	f := newFixture(delhiLocation(), &fakeRetriever{hits: []*domain.CaseHit{matchingHit()}}, details)
	f.reports.saveErr = errors.New("insert report for req-1: disk full")

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	assert.Nil(t, f.reports.report)
	assert.Nil(t, f.reports.resultHits, "nothing persists when the outcome write fails")
	assert.Equal(t, []string{domain.JobStatusFailed}, f.queue.statuses)
	assert.Empty(t, f.notifier.refIDs)
}

func TestWorker_InfrastructureFailure(t *testing.T) {
	locations := &fakeLocations{err: errors.New("connection refused")}
	f := newFixture(locations, &fakeRetriever{}, &fakeDetails{})

	_, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)

	assert.Nil(t, f.reports.report, "no report on infrastructure failure")
	assert.Equal(t, []string{domain.JobStatusFailed}, f.queue.statuses)
	assert.Empty(t, f.notifier.refIDs)
}
