package repository

import (
	"context"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"gorm.io/gorm"
)

type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) GetByID(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(ctx context.Context, limit int) ([]models.Organization, error) {
	var orgs []models.Organization
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orgs).Error
	return orgs, err
}

func (r *organizationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Organization{}).Count(&count).Error
	return count, err
}

type sponsorRepository struct {
	db *gorm.DB
}

func NewSponsorRepository(db *gorm.DB) SponsorRepository {
	return &sponsorRepository{db: db}
}

func (r *sponsorRepository) GetByID(ctx context.Context, id uint) (*models.Sponsor, error) {
	var sponsor models.Sponsor
	if err := r.db.WithContext(ctx).First(&sponsor, id).Error; err != nil {
		return nil, err
	}
	return &sponsor, nil
}

func (r *sponsorRepository) ListActive(ctx context.Context) ([]models.Sponsor, error) {
	var sponsors []models.Sponsor
	err := r.db.WithContext(ctx).
		Where("status = ?", models.STATUS_ACTIVE).
		Order("org_name ASC").
		Find(&sponsors).Error
	return sponsors, err
}

func (r *sponsorRepository) Totals(ctx context.Context) (SponsorTotals, error) {
	var totals SponsorTotals
	err := r.db.WithContext(ctx).Model(&models.Sponsor{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active, "+
			"COALESCE(SUM(total_contributions), 0) AS funding", models.STATUS_ACTIVE).
		Scan(&totals).Error
	return totals, err
}

func (r *sponsorRepository) CountByRegion(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.Sponsor{}).Where("region <> ''"), "region")
}

type programRepository struct {
	db *gorm.DB
}

func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) GetByID(ctx context.Context, id uint) (*models.Program, error) {
	var program models.Program
	if err := r.db.WithContext(ctx).First(&program, id).Error; err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepository) ListActive(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	err := r.db.WithContext(ctx).
		Where("status = ?", models.STATUS_ACTIVE).
		Order("name ASC").
		Find(&programs).Error
	return programs, err
}

func (r *programRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Program{}).Count(&count).Error
	return count, err
}

func (r *programRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Program{}).
		Where("status = ?", models.STATUS_ACTIVE).
		Count(&count).Error
	return count, err
}

func (r *programRepository) CountByRegion(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.Program{}).Where("region <> ''"), "region")
}

func (r *programRepository) CountEnrollments(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *programRepository) CountScholarships(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ScholarshipApplication{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
