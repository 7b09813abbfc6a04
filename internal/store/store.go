package store

import (
	"context"
	"fmt"
	"time"

	"github.com/coldline-crm/coldline/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FilterOp 过滤操作符
type FilterOp string

const (
	FilterEq       FilterOp = "eq"
	FilterContains FilterOp = "contains"
)

// Filter is one equality/contains predicate over a record field.
type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

// Sort orders a listing by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Store is the record store over the four collections: Clients,
// Campaigns, Customers, CallLogs. Records are addressed by opaque ids.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a store over the given database handle.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying handle for operations outside the store API.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func applyFilters(tx *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		switch f.Op {
		case FilterEq, "":
			tx = tx.Where(fmt.Sprintf("%s = ?", f.Field), f.Value)
		case FilterContains:
			tx = tx.Where(fmt.Sprintf("%s LIKE ?", f.Field), fmt.Sprintf("%%%v%%", f.Value))
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return tx, nil
}

func applySort(tx *gorm.DB, sort *Sort) *gorm.DB {
	if sort == nil {
		return tx
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	return tx.Order(fmt.Sprintf("%s %s", sort.Field, dir))
}

// --- Clients ---

func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	return s.db.WithContext(ctx).Create(client).Error
}

func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Store) ListClients(ctx context.Context, filters []Filter, sort *Sort) ([]models.Client, error) {
	tx, err := applyFilters(s.db.WithContext(ctx).Model(&models.Client{}), filters)
	if err != nil {
		return nil, err
	}
	var clients []models.Client
	if err := applySort(tx, sort).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id).Error
}

// --- Campaigns ---

func (s *Store) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	return s.db.WithContext(ctx).Create(campaign).Error
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (s *Store) ListCampaigns(ctx context.Context, filters []Filter, sort *Sort) ([]models.Campaign, error) {
	tx, err := applyFilters(s.db.WithContext(ctx).Model(&models.Campaign{}), filters)
	if err != nil {
		return nil, err
	}
	var campaigns []models.Campaign
	if err := applySort(tx, sort).Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (s *Store) UpdateCampaign(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Campaign{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Campaign{}, "id = ?", id).Error
}

// --- Customers ---

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Create(customer).Error
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context, filters []Filter, sort *Sort) ([]models.Customer, error) {
	tx, err := applyFilters(s.db.WithContext(ctx).Model(&models.Customer{}), filters)
	if err != nil {
		return nil, err
	}
	var customers []models.Customer
	if err := applySort(tx, sort).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error
}

// MarkCustomerContacted flags the customer owning the phone number as
// contacted today, appending the call notes. Best-effort: a missing
// customer is not an error.
func (s *Store) MarkCustomerContacted(ctx context.Context, phone, notes string) error {
	if phone == "" {
		return nil
	}
	updates := map[string]interface{}{
		"status":       models.CustomerStatusContacted,
		"last_contact": models.DateOnly(time.Now()),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	result := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("phone = ?", phone).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		s.logger.Debug("no customer matched contacted update", zap.String("phone", phone))
	}
	return nil
}

// --- Call logs ---

func (s *Store) CreateCallLog(ctx context.Context, log *models.CallLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

// ListCallLogs returns logs filtered by client and/or campaign, newest
// first, limited when limit > 0.
func (s *Store) ListCallLogs(ctx context.Context, clientID, campaignID string, limit int) ([]models.CallLog, error) {
	tx := s.db.WithContext(ctx).Model(&models.CallLog{})
	if clientID != "" {
		tx = tx.Where("client_id = ?", clientID)
	}
	if campaignID != "" {
		tx = tx.Where("campaign_id = ?", campaignID)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var logs []models.CallLog
	if err := tx.Order("date_time DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// --- Aggregates ---

// ApplyClientCallOutcome applies the per-call client counter increments.
// totalCalls and callsThisMonth always advance; connectedCalls only when
// the call reached the ended status, voicemails only when one was left.
// The caller enforces the at-most-once-per-session rule.
func (s *Store) ApplyClientCallOutcome(ctx context.Context, clientID string, ended, voicemail bool) error {
	updates := map[string]interface{}{
		"total_calls":      gorm.Expr("total_calls + 1"),
		"calls_this_month": gorm.Expr("calls_this_month + 1"),
	}
	if ended {
		updates["connected_calls"] = gorm.Expr("connected_calls + 1")
	}
	if voicemail {
		updates["voicemails"] = gorm.Expr("voicemails + 1")
	}
	result := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyCampaignCallOutcome advances the campaign counters and recomputes
// successRate as the cumulative ended/total ratio. The recompute is a
// read-then-write; concurrent calls against the same campaign can race,
// which is an accepted drift.
func (s *Store) ApplyCampaignCallOutcome(ctx context.Context, campaignID string, ended bool, cost float64) error {
	updates := map[string]interface{}{
		"calls":            gorm.Expr("calls + 1"),
		"total_calls_sent": gorm.Expr("total_calls_sent + 1"),
		"calls_this_month": gorm.Expr("calls_this_month + 1"),
	}
	if ended {
		updates["calls_picked_up"] = gorm.Expr("calls_picked_up + 1")
	}
	if cost > 0 {
		updates["total_cost"] = gorm.Expr("total_cost + ?", cost)
	}
	result := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	campaign, err := s.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	rate := 0.0
	if campaign.Calls > 0 {
		rate = float64(campaign.CallsPickedUp) / float64(campaign.Calls) * 100
	}
	return s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Update("success_rate", rate).Error
}

// ResetMonthlyCounters zeroes every client's callsThisMonth and stamps the
// reset date. Run by the monthly maintenance task.
func (s *Store) ResetMonthlyCounters(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("calls_this_month > 0 OR last_monthly_reset <> ?", models.DateOnly(time.Now())).
		Updates(map[string]interface{}{
			"calls_this_month":      0,
			"monthly_call_duration": 0,
			"last_monthly_reset":    models.DateOnly(time.Now()),
		})
	return result.RowsAffected, result.Error
}
