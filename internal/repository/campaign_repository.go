package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/campaign-crm/internal/db"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, offset, limit int) ([]*model.Campaign, int, error)
}

type CampaignRepository struct {
	DB *db.Database
}

type campaignRow struct {
	ID            int       `db:"id"`
	Name          string    `db:"name"`
	Objective     string    `db:"objective"`
	Rules         string    `db:"rules"`
	AudienceCount int       `db:"audience_count"`
	CreatedBy     int       `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
	CreatorName   string    `db:"creator_name"`
	CreatorEmail  string    `db:"creator_email"`
}

func (row campaignRow) toModel() (*model.Campaign, error) {
	c := &model.Campaign{
		ID:            row.ID,
		Name:          row.Name,
		Objective:     row.Objective,
		AudienceCount: row.AudienceCount,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		Rules:         []model.Rule{},
		Logs:          []model.DeliveryLog{},
	}
	if row.Rules != "" {
		if err := json.Unmarshal([]byte(row.Rules), &c.Rules); err != nil {
			return nil, fmt.Errorf("decode rules of campaign %d: %w", row.ID, err)
		}
	}
	if row.CreatorName != "" || row.CreatorEmail != "" {
		c.Creator = &model.UserRef{ID: row.CreatedBy, Name: row.CreatorName, Email: row.CreatorEmail}
	}
	return c, nil
}

// ====================== Campaign aggregate ======================

// Create persists the campaign, its rules and every delivery log in one
// transaction. On any error nothing is written.
func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.AudienceCount != len(c.Logs) {
		return fmt.Errorf("campaign audience count %d does not match %d delivery logs", c.AudienceCount, len(c.Logs))
	}

	rules := c.Rules
	if rules == nil {
		rules = []model.Rule{}
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	insert, err := r.DB.Queries.Raw("insert-campaign")
	if err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.NewStorageError("begin campaign insert", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logrus.WithError(rbErr).Warn("campaign insert rollback failed")
			}
		}
	}()

	var id int
	if err = tx.QueryRowxContext(ctx, insert, c.Name, c.Objective, string(rulesJSON), c.AudienceCount, c.CreatedBy, c.CreatedAt).Scan(&id); err != nil {
		return appErrors.NewStorageError("insert campaign", err)
	}

	err = batches(len(c.Logs), insertBatchSize, func(start, end int) error {
		ib := r.DB.Flavor.NewInsertBuilder()
		ib.InsertInto("delivery_logs")
		ib.Cols("campaign_id", "customer_id", "status", "opened")
		for _, l := range c.Logs[start:end] {
			ib.Values(id, l.CustomerID, string(l.Status), l.Opened)
		}
		query, args := ib.Build()
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return appErrors.NewStorageError("insert delivery logs", err)
	}

	if err = tx.Commit(); err != nil {
		return appErrors.NewStorageError("commit campaign", err)
	}

	c.ID = id
	for i := range c.Logs {
		c.Logs[i].CampaignID = id
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	query, err := r.DB.Queries.Raw("get-campaign")
	if err != nil {
		return nil, err
	}

	var row campaignRow
	if err := r.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, appErrors.NewStorageError("get campaign", err)
	}

	c, err := row.toModel()
	if err != nil {
		return nil, err
	}
	if err := r.attachLogs(ctx, []*model.Campaign{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns returns campaigns newest first. limit <= 0 returns all.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, offset, limit int) ([]*model.Campaign, int, error) {
	var (
		query string
		args  []interface{}
		err   error
	)
	if limit > 0 {
		query, err = r.DB.Queries.Raw("list-campaigns-page")
		args = []interface{}{limit, offset}
	} else {
		query, err = r.DB.Queries.Raw("list-campaigns")
	}
	if err != nil {
		return nil, 0, err
	}

	rows := []campaignRow{}
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, appErrors.NewStorageError("list campaigns", err)
	}

	campaigns := make([]*model.Campaign, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := r.attachLogs(ctx, campaigns); err != nil {
		return nil, 0, err
	}

	// Count total
	countQuery, err := r.DB.Queries.Raw("count-campaigns")
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.DB.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, appErrors.NewStorageError("count campaigns", err)
	}

	return campaigns, total, nil
}

// attachLogs loads the delivery logs of all campaigns, one query per id chunk.
func (r *CampaignRepository) attachLogs(ctx context.Context, campaigns []*model.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}

	byID := make(map[int]*model.Campaign, len(campaigns))
	ids := make([]int, 0, len(campaigns))
	for _, c := range campaigns {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	// ids are bound in chunks so an unpaged listing never reaches the
	// driver's parameter limit
	logs := []model.DeliveryLog{}
	err := batches(len(ids), idBatchSize, func(start, end int) error {
		query, args, err := r.DB.Queries.In("list-delivery-logs", ids[start:end])
		if err != nil {
			return err
		}
		page := []model.DeliveryLog{}
		if err := r.DB.SelectContext(ctx, &page, query, args...); err != nil {
			return appErrors.NewStorageError("list delivery logs", err)
		}
		logs = append(logs, page...)
		return nil
	})
	if err != nil {
		return err
	}
	for _, l := range logs {
		if c, ok := byID[l.CampaignID]; ok {
			c.Logs = append(c.Logs, l)
		}
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
