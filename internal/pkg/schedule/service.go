package schedule

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/archive"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/mail"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/report"
	"gorm.io/gorm"
)

var ErrReportNotFound = errors.New("scheduled report not found")

// ValidationError is returned for bad scheduled report input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store persists scheduled reports and their deliveries.
type Store interface {
	ListScheduledReports(ctx context.Context) ([]models.ScheduledReport, error)
	GetScheduledReport(ctx context.Context, id uint) (*models.ScheduledReport, error)
	CreateScheduledReport(ctx context.Context, r *models.ScheduledReport) error
	SaveScheduledReport(ctx context.Context, r *models.ScheduledReport) error
	DeleteScheduledReport(ctx context.Context, id uint) error
	DueScheduledReports(ctx context.Context, now time.Time) ([]models.ScheduledReport, error)
	CreateReportDelivery(ctx context.Context, d *models.ReportDelivery) error
	ListReportDeliveries(ctx context.Context, reportID uint, limit int) ([]models.ReportDelivery, error)
}

type Generator interface {
	Generate(ctx context.Context, reportType, format string, opts report.Options) (*report.Output, error)
}

type Mailer interface {
	SendTemplate(ctx context.Context, msg mail.Message, template string, data map[string]interface{}) (*mail.Result, error)
}

// Input is the writable part of a scheduled report.
type Input struct {
	Name        string               `json:"name" validate:"required,max=150"`
	Description string               `json:"description"`
	ReportType  string               `json:"reportType" validate:"required,oneof=executive flightplan donor analytics custom"`
	Frequency   string               `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Recipients  []string             `json:"recipients" validate:"required,min=1"`
	Enabled     *bool                `json:"enabled"`
	Options     models.ReportOptions `json:"options"`
}

// RunSummary counts the outcome of one RunDue pass.
type RunSummary struct {
	Processed  int                     `json:"processed"`
	Sent       int                     `json:"sent"`
	Partial    int                     `json:"partial"`
	Failed     int                     `json:"failed"`
	Deliveries []models.ReportDelivery `json:"deliveries"`
}

type Service struct {
	store     Store
	generator Generator
	mailer    Mailer
	archive   archive.Store
	metrics   *metrics.Metrics
	validate  *validator.Validate
	now       func() time.Time
}

type Option func(*Service)

// WithArchive stores each rendered report before it is mailed.
func WithArchive(store archive.Store) Option {
	return func(s *Service) { s.archive = store }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, generator Generator, mailer Mailer, opts ...Option) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	s := &Service{
		store:     store,
		generator: generator,
		mailer:    mailer,
		validate:  v,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]models.ScheduledReport, error) {
	return s.store.ListScheduledReports(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.ScheduledReport, error) {
	r, err := s.store.GetScheduledReport(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	return r, err
}

// Create validates in and schedules the first delivery.
func (s *Service) Create(ctx context.Context, in Input, createdBy string) (*models.ScheduledReport, error) {
	recipients, err := s.check(in)
	if err != nil {
		return nil, err
	}

	next := NextDate(in.Frequency, s.now())
	r := &models.ScheduledReport{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		ReportType:    in.ReportType,
		Frequency:     in.Frequency,
		Recipients:    recipients,
		Enabled:       in.Enabled == nil || *in.Enabled,
		NextScheduled: &next,
		CreatedBy:     createdBy,
		Options:       in.Options,
	}
	if err := s.store.CreateScheduledReport(ctx, r); err != nil {
		return nil, fmt.Errorf("create scheduled report: %w", err)
	}
	log.Infof("[Schedule] created %s report %q (%d recipients)", r.Frequency, r.Name, len(r.Recipients))
	return r, nil
}

// Update replaces the writable fields. A frequency change reschedules.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.ScheduledReport, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	recipients, err := s.check(in)
	if err != nil {
		return nil, err
	}

	if r.Frequency != in.Frequency || r.NextScheduled == nil {
		next := NextDate(in.Frequency, s.now())
		r.NextScheduled = &next
	}
	r.Name = strings.TrimSpace(in.Name)
	r.Description = strings.TrimSpace(in.Description)
	r.ReportType = in.ReportType
	r.Frequency = in.Frequency
	r.Recipients = recipients
	r.Options = in.Options
	if in.Enabled != nil {
		r.Enabled = *in.Enabled
	}
	if err := s.store.SaveScheduledReport(ctx, r); err != nil {
		return nil, fmt.Errorf("update scheduled report: %w", err)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteScheduledReport(ctx, id)
}

// Deliveries lists the most recent deliveries of a report.
func (s *Service) Deliveries(ctx context.Context, id uint, limit int) ([]models.ReportDelivery, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListReportDeliveries(ctx, id, limit)
}

func (s *Service) check(in Input) ([]string, error) {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, &ValidationError{Message: "Missing or invalid fields: " + strings.Join(fields, ", ")}
		}
		return nil, err
	}
	valid, invalid := ValidateEmails(in.Recipients)
	if len(invalid) > 0 {
		return nil, &ValidationError{Message: "Invalid email addresses: " + strings.Join(invalid, ", ")}
	}
	return valid, nil
}

// RunDue delivers every enabled report whose next date has passed.
func (s *Service) RunDue(ctx context.Context) (*RunSummary, error) {
	now := s.now()
	due, err := s.store.DueScheduledReports(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("load due reports: %w", err)
	}

	summary := &RunSummary{Deliveries: []models.ReportDelivery{}}
	var errs []error
	for i := range due {
		d, err := s.deliver(ctx, &due[i], now)
		if err != nil {
			errs = append(errs, err)
		}
		summary.add(d)
	}
	if summary.Processed > 0 {
		log.Infof("[Schedule] processed %d reports: %d sent, %d partial, %d failed",
			summary.Processed, summary.Sent, summary.Partial, summary.Failed)
	}
	return summary, errors.Join(errs...)
}

// RunNow delivers one report immediately regardless of its schedule.
func (s *Service) RunNow(ctx context.Context, id uint) (*models.ReportDelivery, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.deliver(ctx, r, s.now())
	return &d, err
}

func (s *RunSummary) add(d models.ReportDelivery) {
	s.Processed++
	switch d.Status {
	case models.DeliveryStatusSent:
		s.Sent++
	case models.DeliveryStatusPartial:
		s.Partial++
	default:
		s.Failed++
	}
	s.Deliveries = append(s.Deliveries, d)
}

// deliver renders, archives and mails r, then records the attempt. The
// returned error covers persistence failures only; delivery failures are
// recorded on the delivery itself.
func (s *Service) deliver(ctx context.Context, r *models.ScheduledReport, now time.Time) (models.ReportDelivery, error) {
	delivery := models.ReportDelivery{
		ScheduledReportID: r.ID,
		SentAt:            now,
		Recipients:        r.Recipients,
	}

	out, err := s.generator.Generate(ctx, r.ReportType, report.FormatHTML, options(r))
	if err != nil {
		delivery.Status = models.DeliveryStatusFailed
		delivery.ErrorMessage = err.Error()
	} else {
		if s.archive != nil {
			obj, err := s.archive.Save(ctx, archive.KindReport, out.Filename, out.ContentType, out.Body)
			if err != nil {
				log.Warnf("[Schedule] archiving report %d failed: %v", r.ID, err)
			} else {
				delivery.ReportSnapshot = obj.URL
			}
		}
		s.send(ctx, r, out, &delivery)
	}

	if delivery.Status != models.DeliveryStatusFailed {
		r.LastSent = &now
	}
	next := NextDate(r.Frequency, now)
	r.NextScheduled = &next

	s.metrics.Delivery(delivery.Status)
	if err := s.store.CreateReportDelivery(ctx, &delivery); err != nil {
		return delivery, fmt.Errorf("record delivery of report %d: %w", r.ID, err)
	}
	if err := s.store.SaveScheduledReport(ctx, r); err != nil {
		return delivery, fmt.Errorf("reschedule report %d: %w", r.ID, err)
	}
	return delivery, nil
}

func (s *Service) send(ctx context.Context, r *models.ScheduledReport, out *report.Output, delivery *models.ReportDelivery) {
	data := map[string]interface{}{
		"name":        r.Name,
		"frequency":   strings.ToLower(FrequencyLabel(r.Frequency)),
		"reportLabel": report.Label(out.Report.Type),
		"description": r.Description,
		"generatedAt": out.Report.GeneratedAt,
		"archiveUrl":  delivery.ReportSnapshot,
	}

	var failures []string
	for _, to := range r.Recipients {
		msg := mail.Message{
			To:      to,
			Subject: fmt.Sprintf("%s - %s", r.Name, report.Label(out.Report.Type)),
			HTML:    string(out.Body),
			Attachments: []mail.Attachment{{
				Filename:    out.Filename,
				ContentType: out.ContentType,
				Content:     out.Body,
			}},
		}
		if _, err := s.mailer.SendTemplate(ctx, msg, mail.TemplateScheduledReport, data); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", to, err))
		}
	}

	switch {
	case len(failures) == 0:
		delivery.Status = models.DeliveryStatusSent
	case len(failures) == len(r.Recipients):
		delivery.Status = models.DeliveryStatusFailed
	default:
		delivery.Status = models.DeliveryStatusPartial
	}
	delivery.ErrorMessage = strings.Join(failures, "; ")
}

func options(r *models.ScheduledReport) report.Options {
	return report.Options{
		IncludeCharts:  r.Options.IncludeCharts,
		IncludeTables:  r.Options.IncludeTables,
		CustomSections: r.Options.CustomSections,
	}
}
