package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"jobboard/pkg/domain"
)

const (
	migrateLockID   int64 = 51730221
	bootstrapLockID int64 = 51730222
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

type foreignKey struct {
	table, column, refTable, onDelete string
}

var foreignKeys = []foreignKey{
	{table: "user_models", column: "company_id", refTable: "company_models", onDelete: "SET NULL"},
	{table: "job_models", column: "company_id", refTable: "company_models", onDelete: "CASCADE"},
	{table: "application_models", column: "job_id", refTable: "job_models", onDelete: "CASCADE"},
	{table: "application_models", column: "applicant_id", refTable: "user_models", onDelete: "CASCADE"},
	{table: "saved_job_models", column: "job_id", refTable: "job_models", onDelete: "CASCADE"},
	{table: "saved_job_models", column: "user_id", refTable: "user_models", onDelete: "CASCADE"},
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &CompanyModel{}, &JobModel{}, &ApplicationModel{}, &SavedJobModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		for _, fk := range foreignKeys {
			if err := ensureForeignKey(tx, fk); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func ensureForeignKey(tx *gorm.DB, fk foreignKey) error {
	name := fmt.Sprintf("%s_%s_fkey", fk.table, fk.column)
	stmt := fmt.Sprintf(`
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE table_schema = 'public'
				AND table_name = '%[1]s'
				AND constraint_name = '%[2]s'
			) THEN
				ALTER TABLE %[1]s
				ADD CONSTRAINT %[2]s
				FOREIGN KEY (%[3]s) REFERENCES %[4]s(id) ON DELETE %[5]s;
			END IF;
		END $$;
	`, fk.table, name, fk.column, fk.refTable, fk.onDelete)
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("ensure foreign key %s: %w", name, err)
	}
	return nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateWriteErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// RegisterUser inserts a user, storing it as admin when the table is empty.
// Concurrent registrations serialize on a transaction-scoped advisory lock.
func (s *GormStore) RegisterUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", bootstrapLockID).Error; err != nil {
			return fmt.Errorf("acquire bootstrap lock: %w", err)
		}
		var count int64
		if err := tx.Model(&UserModel{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			u.Role = domain.RoleAdmin
		}
		model := userToModel(u)
		return translateWriteErr(tx.Create(&model).Error)
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdateUser overwrites the mutable user columns.
func (s *GormStore) UpdateUser(ctx context.Context, u domain.User) error {
	model := userToModel(u)
	res := s.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"email":         model.Email,
			"password_hash": model.PasswordHash,
			"first_name":    model.FirstName,
			"last_name":     model.LastName,
			"role":          model.Role,
			"profile_image": model.ProfileImage,
			"company_id":    model.CompanyID,
			"updated_at":    model.UpdatedAt,
		})
	if res.Error != nil {
		return translateWriteErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserByID returns a user with saved job ids.
func (s *GormStore) GetUserByID(ctx context.Context, id string) (domain.User, bool, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *GormStore) getUser(ctx context.Context, query string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	user := userFromModel(model)
	saved, err := s.ListSavedJobIDs(ctx, user.ID)
	if err != nil {
		return domain.User{}, false, err
	}
	user.SavedJobs = saved
	return user, true, nil
}

// ListUsers returns all users ordered by created_at.
func (s *GormStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	var models []UserModel
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// SaveJob bookmarks a job; saving twice is a no-op.
func (s *GormStore) SaveJob(ctx context.Context, userID, jobID string) error {
	model := SavedJobModel{UserID: userID, JobID: jobID, CreatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// UnsaveJob removes a bookmark.
func (s *GormStore) UnsaveJob(ctx context.Context, userID, jobID string) error {
	return s.db.WithContext(ctx).Delete(&SavedJobModel{}, "user_id = ? AND job_id = ?", userID, jobID).Error
}

// ListSavedJobIDs returns bookmarked job ids, oldest first.
func (s *GormStore) ListSavedJobIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	if err := s.db.WithContext(ctx).Model(&SavedJobModel{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("job_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateCompany inserts the company and attaches its owner in one transaction.
// The owner record is written as given, so callers set CompanyID and any role
// promotion before calling.
func (s *GormStore) CreateCompany(ctx context.Context, c domain.Company, owner domain.User) error {
	companyModel := companyToModel(c)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&companyModel).Error; err != nil {
			return translateWriteErr(err)
		}
		res := tx.Model(&UserModel{}).Where("id = ?", owner.ID).Updates(map[string]any{
			"company_id": c.ID,
			"role":       string(owner.Role),
			"updated_at": owner.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdateCompany overwrites the mutable company columns.
func (s *GormStore) UpdateCompany(ctx context.Context, c domain.Company) error {
	res := s.db.WithContext(ctx).Model(&CompanyModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":        c.Name,
			"slug":        c.Slug,
			"description": c.Description,
			"website":     c.Website,
			"location":    c.Location,
			"logo":        c.Logo,
			"status":      string(c.Status),
			"updated_at":  c.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCompany returns a company with its employee and job ids.
func (s *GormStore) GetCompany(ctx context.Context, id string) (domain.Company, bool, error) {
	var model CompanyModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Company{}, false, nil
		}
		return domain.Company{}, false, err
	}
	companies := []domain.Company{companyFromModel(model)}
	if err := s.attachCompanyRefs(ctx, companies); err != nil {
		return domain.Company{}, false, err
	}
	return companies[0], true, nil
}

// ListCompanies returns companies ordered by name, optionally filtered by status.
func (s *GormStore) ListCompanies(ctx context.Context, status domain.CompanyStatus) ([]domain.Company, error) {
	var models []CompanyModel
	tx := s.db.WithContext(ctx).Order("name ASC").Order("id ASC")
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Company, 0, len(models))
	for _, m := range models {
		res = append(res, companyFromModel(m))
	}
	if err := s.attachCompanyRefs(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

type refRow struct {
	CompanyID string
	ID        string
}

func (s *GormStore) attachCompanyRefs(ctx context.Context, companies []domain.Company) error {
	if len(companies) == 0 {
		return nil
	}
	ids := make([]string, 0, len(companies))
	index := make(map[string]int, len(companies))
	for i, c := range companies {
		ids = append(ids, c.ID)
		index[c.ID] = i
	}
	var employees []refRow
	if err := s.db.WithContext(ctx).Model(&UserModel{}).
		Select("company_id, id").
		Where("company_id IN ?", ids).
		Order("created_at ASC").
		Scan(&employees).Error; err != nil {
		return fmt.Errorf("list company employees: %w", err)
	}
	for _, row := range employees {
		i := index[row.CompanyID]
		companies[i].Employees = append(companies[i].Employees, row.ID)
	}
	var jobs []refRow
	if err := s.db.WithContext(ctx).Model(&JobModel{}).
		Select("company_id, id").
		Where("company_id IN ?", ids).
		Order("created_at ASC").
		Scan(&jobs).Error; err != nil {
		return fmt.Errorf("list company jobs: %w", err)
	}
	for _, row := range jobs {
		i := index[row.CompanyID]
		companies[i].Jobs = append(companies[i].Jobs, row.ID)
	}
	return nil
}

// DeleteCompany removes the company, detaches its employees and removes its
// jobs with their applications and bookmarks.
func (s *GormStore) DeleteCompany(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&UserModel{}).Where("company_id = ?", id).Updates(map[string]any{
			"company_id": nil,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
			return fmt.Errorf("detach employees: %w", err)
		}
		jobIDs := tx.Model(&JobModel{}).Select("id").Where("company_id = ?", id)
		if err := tx.Where("job_id IN (?)", jobIDs).Delete(&SavedJobModel{}).Error; err != nil {
			return fmt.Errorf("delete saved jobs: %w", err)
		}
		if err := tx.Where("job_id IN (?)", jobIDs).Delete(&ApplicationModel{}).Error; err != nil {
			return fmt.Errorf("delete applications: %w", err)
		}
		if err := tx.Delete(&JobModel{}, "company_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete jobs: %w", err)
		}
		res := tx.Delete(&CompanyModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateJob inserts a job.
func (s *GormStore) CreateJob(ctx context.Context, j domain.Job) error {
	model := jobToModel(j)
	return translateWriteErr(s.db.WithContext(ctx).Create(&model).Error)
}

// UpdateJob overwrites the mutable job columns.
func (s *GormStore) UpdateJob(ctx context.Context, j domain.Job) error {
	model := jobToModel(j)
	res := s.db.WithContext(ctx).Model(&JobModel{}).
		Where("id = ?", j.ID).
		Updates(map[string]any{
			"title":        model.Title,
			"company_id":   model.CompanyID,
			"location":     model.Location,
			"description":  model.Description,
			"requirements": model.Requirements,
			"salary":       model.Salary,
			"tags":         model.Tags,
			"type":         model.Type,
			"featured":     model.Featured,
			"updated_at":   model.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetJob returns a job with its company summary and application count.
func (s *GormStore) GetJob(ctx context.Context, id string) (domain.Job, bool, error) {
	var model JobModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Job{}, false, nil
		}
		return domain.Job{}, false, err
	}
	jobs := []domain.Job{jobFromModel(model)}
	if err := s.attachJobRefs(ctx, jobs); err != nil {
		return domain.Job{}, false, err
	}
	return jobs[0], true, nil
}

// ListJobs returns one page of jobs matching the filter.
func (s *GormStore) ListJobs(ctx context.Context, f domain.JobFilter) ([]domain.Job, error) {
	tx := s.jobQuery(ctx, f)
	for _, order := range jobOrder(f.Sort) {
		tx = tx.Order(order)
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	var models []JobModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	return s.jobsFromModels(ctx, models)
}

// CountJobs counts all jobs matching the filter, ignoring offset and limit.
func (s *GormStore) CountJobs(ctx context.Context, f domain.JobFilter) (int, error) {
	var count int64
	if err := s.jobQuery(ctx, f).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListJobsByIDs returns the jobs that exist among ids, in no particular order.
func (s *GormStore) ListJobsByIDs(ctx context.Context, ids []string) ([]domain.Job, error) {
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}
	var models []JobModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return s.jobsFromModels(ctx, models)
}

func (s *GormStore) jobsFromModels(ctx context.Context, models []JobModel) ([]domain.Job, error) {
	jobs := make([]domain.Job, 0, len(models))
	for _, m := range models {
		jobs = append(jobs, jobFromModel(m))
	}
	if err := s.attachJobRefs(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *GormStore) jobQuery(ctx context.Context, f domain.JobFilter) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&JobModel{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		tx = tx.Where("(title ILIKE ? OR description ILIKE ?)", like, like)
	}
	if location := strings.TrimSpace(f.Location); location != "" {
		tx = tx.Where("location ILIKE ?", "%"+escapeLike(location)+"%")
	}
	if f.Type != "" {
		tx = tx.Where("type = ?", string(f.Type))
	}
	if f.CompanyID != "" {
		tx = tx.Where("company_id = ?", f.CompanyID)
	}
	if len(f.Tags) > 0 {
		tx = tx.Where("tags && ?::text[]", pq.Array(f.Tags))
	}
	return tx
}

func jobOrder(sort domain.JobSort) []string {
	switch sort {
	case domain.SortLatest:
		return []string{"created_at DESC", "id DESC"}
	case domain.SortOldest:
		return []string{"created_at ASC", "id ASC"}
	default:
		return []string{"featured DESC", "created_at DESC", "id DESC"}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type countRow struct {
	JobID string
	Count int
}

func (s *GormStore) attachJobRefs(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	jobIDs := make([]string, 0, len(jobs))
	companySet := make(map[string]struct{})
	for _, j := range jobs {
		jobIDs = append(jobIDs, j.ID)
		companySet[j.CompanyID] = struct{}{}
	}
	companyIDs := make([]string, 0, len(companySet))
	for id := range companySet {
		companyIDs = append(companyIDs, id)
	}

	var companies []CompanyModel
	if err := s.db.WithContext(ctx).Where("id IN ?", companyIDs).Find(&companies).Error; err != nil {
		return fmt.Errorf("load job companies: %w", err)
	}
	summaries := make(map[string]*domain.CompanySummary, len(companies))
	for _, c := range companies {
		summaries[c.ID] = companySummaryFromModel(c)
	}

	var counts []countRow
	if err := s.db.WithContext(ctx).Model(&ApplicationModel{}).
		Select("job_id, COUNT(*) AS count").
		Where("job_id IN ?", jobIDs).
		Group("job_id").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("count job applications: %w", err)
	}
	byJob := make(map[string]int, len(counts))
	for _, row := range counts {
		byJob[row.JobID] = row.Count
	}

	for i := range jobs {
		jobs[i].Company = summaries[jobs[i].CompanyID]
		jobs[i].ApplicationCount = byJob[jobs[i].ID]
	}
	return nil
}

// DeleteJob removes a job with its applications and bookmarks.
func (s *GormStore) DeleteJob(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&SavedJobModel{}, "job_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete saved jobs: %w", err)
		}
		if err := tx.Delete(&ApplicationModel{}, "job_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete applications: %w", err)
		}
		res := tx.Delete(&JobModel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateApplication inserts an application. The unique (job_id, applicant_id)
// index turns a duplicate submission into ErrAlreadyExists.
func (s *GormStore) CreateApplication(ctx context.Context, a domain.Application) error {
	model := applicationToModel(a)
	return translateWriteErr(s.db.WithContext(ctx).Create(&model).Error)
}

// UpdateApplication writes status, notes and history.
func (s *GormStore) UpdateApplication(ctx context.Context, a domain.Application) error {
	model := applicationToModel(a)
	res := s.db.WithContext(ctx).Model(&ApplicationModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":     model.Status,
			"notes":      model.Notes,
			"history":    model.History,
			"updated_at": model.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetApplication retrieves an application.
func (s *GormStore) GetApplication(ctx context.Context, id string) (domain.Application, bool, error) {
	var model ApplicationModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, false, nil
		}
		return domain.Application{}, false, err
	}
	return applicationFromModel(model), true, nil
}

// ListApplicationsByApplicant returns an applicant's applications, newest first.
func (s *GormStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error) {
	return s.listApplications(ctx, "applicant_id = ?", applicantID)
}

// ListApplicationsByJob returns a job's applications, newest first.
func (s *GormStore) ListApplicationsByJob(ctx context.Context, jobID string) ([]domain.Application, error) {
	return s.listApplications(ctx, "job_id = ?", jobID)
}

func (s *GormStore) listApplications(ctx context.Context, query string, arg any) ([]domain.Application, error) {
	var models []ApplicationModel
	if err := s.db.WithContext(ctx).Where(query, arg).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Application, 0, len(models))
	for _, m := range models {
		res = append(res, applicationFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	var companyID *string
	if id := strings.TrimSpace(u.CompanyID); id != "" {
		companyID = &id
	}
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         string(u.Role),
		ProfileImage: u.ProfileImage,
		CompanyID:    companyID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	companyID := ""
	if m.CompanyID != nil {
		companyID = *m.CompanyID
	}
	role := domain.UserRole(m.Role)
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Role:         role,
		ProfileImage: m.ProfileImage,
		CompanyID:    companyID,
		SavedJobs:    []string{},
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func companyToModel(c domain.Company) CompanyModel {
	return CompanyModel{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Website:     c.Website,
		Location:    c.Location,
		Logo:        c.Logo,
		Status:      string(c.Status),
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func companyFromModel(m CompanyModel) domain.Company {
	return domain.Company{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Website:     m.Website,
		Location:    m.Location,
		Logo:        m.Logo,
		Status:      domain.CompanyStatus(m.Status),
		CreatedBy:   m.CreatedBy,
		Employees:   []string{},
		Jobs:        []string{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func companySummaryFromModel(m CompanyModel) *domain.CompanySummary {
	return &domain.CompanySummary{
		ID:       m.ID,
		Name:     m.Name,
		Location: m.Location,
		Logo:     m.Logo,
		Status:   domain.CompanyStatus(m.Status),
	}
}

func jobToModel(j domain.Job) JobModel {
	return JobModel{
		ID:           j.ID,
		Title:        j.Title,
		CompanyID:    j.CompanyID,
		Location:     j.Location,
		Description:  j.Description,
		Requirements: pq.StringArray(j.Requirements),
		Salary:       j.Salary,
		Tags:         pq.StringArray(j.Tags),
		Type:         string(j.Type),
		Featured:     j.Featured,
		PostedBy:     j.PostedBy,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func jobFromModel(m JobModel) domain.Job {
	requirements := []string(m.Requirements)
	if requirements == nil {
		requirements = []string{}
	}
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return domain.Job{
		ID:           m.ID,
		Title:        m.Title,
		CompanyID:    m.CompanyID,
		Location:     m.Location,
		Description:  m.Description,
		Requirements: requirements,
		Salary:       m.Salary,
		Tags:         tags,
		Type:         domain.JobType(m.Type),
		Featured:     m.Featured,
		PostedBy:     m.PostedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func applicationToModel(a domain.Application) ApplicationModel {
	history := a.History
	if history == nil {
		history = []domain.StatusChange{}
	}
	raw, _ := json.Marshal(history)
	return ApplicationModel{
		ID:          a.ID,
		JobID:       a.JobID,
		ApplicantID: a.ApplicantID,
		Resume:      a.Resume,
		CoverLetter: a.CoverLetter,
		Status:      string(a.Status),
		Notes:       a.Notes,
		History:     datatypes.JSON(raw),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func applicationFromModel(m ApplicationModel) domain.Application {
	history := []domain.StatusChange{}
	if len(m.History) > 0 {
		_ = json.Unmarshal(m.History, &history)
	}
	return domain.Application{
		ID:          m.ID,
		JobID:       m.JobID,
		ApplicantID: m.ApplicantID,
		Resume:      m.Resume,
		CoverLetter: m.CoverLetter,
		Status:      domain.ApplicationStatus(m.Status),
		Notes:       m.Notes,
		History:     history,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
