// internal/service/campaign_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/campaign-crm/internal/audience"
	"github.com/unclebandit/campaign-crm/internal/delivery"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/metrics"
	"github.com/unclebandit/campaign-crm/internal/model"
	"github.com/unclebandit/campaign-crm/internal/queue"
	"github.com/unclebandit/campaign-crm/internal/repository"
)

// SummaryCache stores rendered summaries by campaign id. Optional.
type SummaryCache interface {
	Get(ctx context.Context, campaignID int) (string, bool, error)
	Set(ctx context.Context, campaignID int, summary string) error
}

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	OrderRepo    repository.OrderRepositoryInterface
	Delivery     delivery.Provider
	Queue        queue.Queue
	Cache        SummaryCache
}

// Result struct for CreateCampaign
type CreateCampaignResult struct {
	CampaignID    int `json:"campaign_id"`
	AudienceCount int `json:"audience_count"`
}

type createCampaignInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	Objective string `json:"objective" validate:"required,max=1000"`
}

// resolver is built per call so preview and create always share the same
// evaluation path.
func (s *CampaignService) resolver() *audience.Resolver {
	return audience.NewResolver(s.CustomerRepo, s.OrderRepo)
}

func (s *CampaignService) provider() delivery.Provider {
	if s.Delivery == nil {
		return delivery.NewSimulatedProvider(delivery.DefaultSendRate, delivery.DefaultOpenRate)
	}
	return s.Delivery
}

// PreviewAudience returns the size of the audience the rules select.
func (s *CampaignService) PreviewAudience(ctx context.Context, rules []model.Rule) (int, error) {
	customers, err := s.resolver().ResolveRules(ctx, rules)
	metrics.RecordPreview(err)
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"rule_count":     len(rules),
		"audience_count": len(customers),
	}).Debug("audience previewed")
	return len(customers), nil
}

// CreateCampaign resolves the audience, simulates delivery to every member
// and stores the campaign with its logs atomically.
func (s *CampaignService) CreateCampaign(ctx context.Context, name, objective string, rules []model.Rule, actorID int) (*CreateCampaignResult, error) {
	in := createCampaignInput{
		Name:      strings.TrimSpace(name),
		Objective: strings.TrimSpace(objective),
	}
	if err := validateStruct("", in); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []model.Rule{}
	}

	members, err := s.resolver().ResolveRules(ctx, rules)
	if err != nil {
		return nil, err
	}

	logs, err := BuildDeliveryLogs(ctx, s.provider(), members)
	if err != nil {
		return nil, err
	}

	c := &model.Campaign{
		Name:          in.Name,
		Objective:     in.Objective,
		Rules:         rules,
		AudienceCount: len(members),
		Logs:          logs,
		CreatedBy:     actorID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	metrics.RecordCampaign(c)
	log := logrus.WithFields(logrus.Fields{
		"campaign_id":    c.ID,
		"audience_count": c.AudienceCount,
		"created_by":     actorID,
	})
	log.Info("campaign created")

	s.publishCreated(c, log)

	return &CreateCampaignResult{CampaignID: c.ID, AudienceCount: c.AudienceCount}, nil
}

// publishCreated is best effort; the campaign is already committed.
func (s *CampaignService) publishCreated(c *model.Campaign, log *logrus.Entry) {
	if s.Queue == nil {
		return
	}
	ev := model.CampaignEvent{
		EventID:       uuid.NewString(),
		Type:          model.EventCampaignCreated,
		CampaignID:    c.ID,
		AudienceCount: c.AudienceCount,
		CreatedBy:     c.CreatedBy,
		OccurredAt:    c.CreatedAt,
	}
	if err := s.Queue.Publish(queue.TopicCampaignEvents, ev); err != nil {
		log.WithError(err).Warn("failed to publish campaign event")
	}
}

// GetCampaign returns the campaign with its logs, creator and customer details.
func (s *CampaignService) GetCampaign(ctx context.Context, id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

// ListCampaigns returns every campaign, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	campaigns, _, err := s.CampaignRepo.ListCampaigns(ctx, 0, 0)
	return campaigns, err
}

// ListCampaignsPage fetches campaigns with pagination
func (s *CampaignService) ListCampaignsPage(ctx context.Context, page, pageSize int) ([]*model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.CampaignRepo.ListCampaigns(ctx, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignSummary renders the delivery summary of a stored campaign.
func (s *CampaignService) GetCampaignSummary(ctx context.Context, id int) (string, error) {
	if s.Cache != nil {
		summary, ok, err := s.Cache.Get(ctx, id)
		switch {
		case err != nil:
			metrics.SummaryCacheTotal.WithLabelValues("error").Inc()
			logrus.WithError(err).WithField("campaign_id", id).Warn("summary cache read failed")
		case ok:
			metrics.SummaryCacheTotal.WithLabelValues("hit").Inc()
			return summary, nil
		default:
			metrics.SummaryCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", appErrors.NewCampaignNotFound(id)
	}

	summary := Summarize(c).Text()

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, id, summary); err != nil {
			logrus.WithError(err).WithField("campaign_id", id).Warn("summary cache write failed")
		}
	}
	return summary, nil
}

// Suggestions returns message texts for the objective.
func (s *CampaignService) Suggestions(objective string) []string {
	return Suggestions(objective)
}
