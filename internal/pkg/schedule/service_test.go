package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/archive"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/mail"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStore struct {
	reports    map[uint]*models.ScheduledReport
	deliveries []models.ReportDelivery
	nextID     uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: map[uint]*models.ScheduledReport{}}
}

func (m *memoryStore) ListScheduledReports(context.Context) ([]models.ScheduledReport, error) {
	var out []models.ScheduledReport
	for id := uint(1); id <= m.nextID; id++ {
		if r, ok := m.reports[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryStore) GetScheduledReport(_ context.Context, id uint) (*models.ScheduledReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryStore) CreateScheduledReport(_ context.Context, r *models.ScheduledReport) error {
	m.nextID++
	r.ID = m.nextID
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *memoryStore) SaveScheduledReport(_ context.Context, r *models.ScheduledReport) error {
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *memoryStore) DeleteScheduledReport(_ context.Context, id uint) error {
	delete(m.reports, id)
	return nil
}

func (m *memoryStore) DueScheduledReports(_ context.Context, now time.Time) ([]models.ScheduledReport, error) {
	var out []models.ScheduledReport
	for id := uint(1); id <= m.nextID; id++ {
		r, ok := m.reports[id]
		if ok && r.Enabled && r.NextScheduled != nil && !r.NextScheduled.After(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryStore) CreateReportDelivery(_ context.Context, d *models.ReportDelivery) error {
	d.ID = uint(len(m.deliveries) + 1)
	m.deliveries = append(m.deliveries, *d)
	return nil
}

func (m *memoryStore) ListReportDeliveries(_ context.Context, reportID uint, limit int) ([]models.ReportDelivery, error) {
	var out []models.ReportDelivery
	for _, d := range m.deliveries {
		if d.ScheduledReportID == reportID && len(out) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	calls []string
	opts  []report.Options
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, reportType, format string, opts report.Options) (*report.Output, error) {
	f.calls = append(f.calls, reportType+"/"+format)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &report.Output{
		Report:      report.Report{Type: reportType, GeneratedAt: time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)},
		Format:      format,
		ContentType: "text/html; charset=utf-8",
		Filename:    reportType + "_report_2026-10-19.html",
		Body:        []byte("<html>report</html>"),
	}, nil
}

type sentMail struct {
	msg      mail.Message
	template string
	data     map[string]interface{}
}

type fakeMailer struct {
	sent   []sentMail
	failTo map[string]bool
}

func (f *fakeMailer) SendTemplate(_ context.Context, msg mail.Message, template string, data map[string]interface{}) (*mail.Result, error) {
	if f.failTo[msg.To] {
		return nil, errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, sentMail{msg: msg, template: template, data: data})
	return &mail.Result{Provider: "fake"}, nil
}

type fakeArchive struct {
	saved []string
	err   error
}

func (f *fakeArchive) Save(_ context.Context, kind, filename, _ string, _ []byte) (*archive.Object, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, kind+"/"+filename)
	return &archive.Object{URL: "s3://htn/" + kind + "/" + filename}, nil
}

var scheduleNow = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type harness struct {
	svc     *Service
	store   *memoryStore
	gen     *fakeGenerator
	mailer  *fakeMailer
	archive *fakeArchive
	now     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   newMemoryStore(),
		gen:     &fakeGenerator{},
		mailer:  &fakeMailer{failTo: map[string]bool{}},
		archive: &fakeArchive{},
		now:     scheduleNow,
	}
	h.svc = NewService(h.store, h.gen, h.mailer,
		WithArchive(h.archive),
		WithClock(func() time.Time { return h.now }),
	)
	return h
}

func weeklyInput() Input {
	return Input{
		Name:       "Board Weekly",
		ReportType: "executive",
		Frequency:  "weekly",
		Recipients: []string{"Board@HTN.org", "chair@htn.org"},
	}
}

func TestCreateSchedulesFirstDelivery(t *testing.T) {
	h := newHarness(t)

	r, err := h.svc.Create(context.Background(), weeklyInput(), "admin-1")
	require.NoError(t, err)

	assert.Equal(t, uint(1), r.ID)
	assert.True(t, r.Enabled)
	assert.Equal(t, []string{"board@htn.org", "chair@htn.org"}, r.Recipients)
	assert.Equal(t, "admin-1", r.CreatedBy)
	require.NotNil(t, r.NextScheduled)
	assert.Equal(t, time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC), *r.NextScheduled)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		mutate func(*Input)
		want   string
	}{
		{"missing name", func(in *Input) { in.Name = "" }, "name"},
		{"bad type", func(in *Input) { in.ReportType = "quarterly" }, "reportType"},
		{"bad frequency", func(in *Input) { in.Frequency = "hourly" }, "frequency"},
		{"no recipients", func(in *Input) { in.Recipients = nil }, "recipients"},
		{"bad date range", func(in *Input) { in.Options.DateRange = "forever" }, "dateRange"},
		{"bad email", func(in *Input) { in.Recipients = []string{"ok@htn.org", "not-an-email"} }, "Invalid email addresses: not-an-email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := weeklyInput()
			tt.mutate(&in)
			_, err := h.svc.Create(context.Background(), in, "admin")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Message, tt.want)
		})
	}
	assert.Empty(t, h.store.reports)
}

func TestUpdateReschedulesOnFrequencyChange(t *testing.T) {
	h := newHarness(t)
	r, err := h.svc.Create(context.Background(), weeklyInput(), "admin")
	require.NoError(t, err)

	in := weeklyInput()
	in.Frequency = "monthly"
	off := false
	in.Enabled = &off
	updated, err := h.svc.Update(context.Background(), r.ID, in)
	require.NoError(t, err)

	assert.False(t, updated.Enabled)
	assert.Equal(t, time.Date(2026, 11, 1, 6, 0, 0, 0, time.UTC), *updated.NextScheduled)

	_, err = h.svc.Update(context.Background(), 99, in)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	r, err := h.svc.Create(context.Background(), weeklyInput(), "admin")
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(context.Background(), r.ID))
	assert.ErrorIs(t, h.svc.Delete(context.Background(), r.ID), ErrReportNotFound)
}

func TestRunDueDeliversAndReschedules(t *testing.T) {
	h := newHarness(t)
	tables := false
	in := weeklyInput()
	in.Options.IncludeTables = &tables
	_, err := h.svc.Create(context.Background(), in, "admin")
	require.NoError(t, err)

	h.now = time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	summary, err := h.svc.RunDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, []string{"executive/html"}, h.gen.calls)
	require.NotNil(t, h.gen.opts[0].IncludeTables)
	assert.False(t, *h.gen.opts[0].IncludeTables)
	assert.Equal(t, []string{"reports/executive_report_2026-10-19.html"}, h.archive.saved)

	require.Len(t, h.mailer.sent, 2)
	first := h.mailer.sent[0]
	assert.Equal(t, "board@htn.org", first.msg.To)
	assert.Equal(t, "Board Weekly - Executive Summary", first.msg.Subject)
	assert.Equal(t, mail.TemplateScheduledReport, first.template)
	assert.Equal(t, "weekly (mondays)", first.data["frequency"])
	assert.Equal(t, "s3://htn/reports/executive_report_2026-10-19.html", first.data["archiveUrl"])
	require.Len(t, first.msg.Attachments, 1)
	assert.Equal(t, "executive_report_2026-10-19.html", first.msg.Attachments[0].Filename)

	require.Len(t, h.store.deliveries, 1)
	d := h.store.deliveries[0]
	assert.Equal(t, models.DeliveryStatusSent, d.Status)
	assert.Equal(t, "s3://htn/reports/executive_report_2026-10-19.html", d.ReportSnapshot)
	assert.Empty(t, d.ErrorMessage)

	saved := h.store.reports[1]
	assert.Equal(t, h.now, *saved.LastSent)
	assert.Equal(t, time.Date(2026, 10, 26, 6, 0, 0, 0, time.UTC), *saved.NextScheduled)

	summary, err = h.svc.RunDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Processed, "already rescheduled")
}

func TestRunDueSkipsDisabledAndFutureReports(t *testing.T) {
	h := newHarness(t)
	off := false
	in := weeklyInput()
	in.Enabled = &off
	_, err := h.svc.Create(context.Background(), in, "admin")
	require.NoError(t, err)
	_, err = h.svc.Create(context.Background(), weeklyInput(), "admin")
	require.NoError(t, err)

	summary, err := h.svc.RunDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
	assert.Empty(t, h.gen.calls)
}

func TestRunDueStatuses(t *testing.T) {
	tests := []struct {
		name       string
		failTo     []string
		genErr     error
		archiveErr error
		want       string
		lastSent   bool
	}{
		{"all sent despite archive failure", nil, nil, errors.New("bucket gone"), models.DeliveryStatusSent, true},
		{"partial", []string{"chair@htn.org"}, nil, nil, models.DeliveryStatusPartial, true},
		{"all recipients failed", []string{"board@htn.org", "chair@htn.org"}, nil, nil, models.DeliveryStatusFailed, false},
		{"render failed", nil, errors.New("db down"), nil, models.DeliveryStatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.gen.err = tt.genErr
			h.archive.err = tt.archiveErr
			for _, to := range tt.failTo {
				h.mailer.failTo[to] = true
			}
			_, err := h.svc.Create(context.Background(), weeklyInput(), "admin")
			require.NoError(t, err)

			h.now = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
			summary, err := h.svc.RunDue(context.Background())
			require.NoError(t, err)
			require.Len(t, summary.Deliveries, 1)

			d := summary.Deliveries[0]
			assert.Equal(t, tt.want, d.Status)
			if tt.want != models.DeliveryStatusSent {
				assert.NotEmpty(t, d.ErrorMessage)
			}
			if tt.archiveErr != nil {
				assert.Empty(t, d.ReportSnapshot)
			}
			assert.Equal(t, tt.lastSent, h.store.reports[1].LastSent != nil)
			assert.Equal(t, time.Date(2026, 10, 26, 6, 0, 0, 0, time.UTC), *h.store.reports[1].NextScheduled)
		})
	}
}

func TestRunNowAndDeliveries(t *testing.T) {
	h := newHarness(t)
	r, err := h.svc.Create(context.Background(), weeklyInput(), "admin")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d, err := h.svc.RunNow(context.Background(), r.ID)
		require.NoError(t, err, fmt.Sprint("run ", i))
		assert.Equal(t, models.DeliveryStatusSent, d.Status)
	}

	list, err := h.svc.Deliveries(context.Background(), r.ID, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = h.svc.RunNow(context.Background(), 42)
	assert.ErrorIs(t, err, ErrReportNotFound)
}
