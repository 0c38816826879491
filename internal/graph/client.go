package graph

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	"github.com/intunedeck/intunedeck/internal/domain/device"
	"github.com/intunedeck/intunedeck/internal/domain/group"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

// Client is the typed Graph API surface the services consume. It owns
// pagination and payload mapping; rate limiting and retry live above it.
type Client interface {
	ListMobileApps(ctx context.Context, search string) ([]*application.Application, error)
	GetMobileApp(ctx context.Context, id string) (*application.Application, error)
	FetchAssignments(ctx context.Context, appID string) ([]*assignment.Assignment, error)
	AssignApp(ctx context.Context, appID string, batch []*assignment.Assignment) error
	ListGroups(ctx context.Context, search string) ([]*group.DeviceGroup, error)
	GetGroup(ctx context.Context, id string) (*group.DeviceGroup, error)
	ListManagedDevices(ctx context.Context) ([]*device.ManagedDevice, error)
	ListAuditEvents(ctx context.Context, filter *auditlog.Filter) ([]*auditlog.AuditEvent, error)
}

type client struct {
	executor Executor
	pageSize int
	logger   *logger.Logger
}

// NewClient creates a Graph client over the executor.
func NewClient(cfg *config.Configuration, executor Executor, log *logger.Logger) Client {
	return &client{
		executor: executor,
		pageSize: cfg.Graph.PageSize,
		logger:   log,
	}
}

// listEnvelope is the Graph collection wrapper; NextLink drives pagination.
type listEnvelope struct {
	Value    jsoniter.RawMessage `json:"value"`
	NextLink string              `json:"@odata.nextLink"`
}

// listAll follows @odata.nextLink until the collection is exhausted,
// decoding each page into T.
func listAll[T any](ctx context.Context, c *client, path string, query url.Values) ([]T, error) {
	var out []T

	next := path
	nextQuery := query
	for next != "" {
		resp, err := c.executor.Do(ctx, &Request{
			Method: http.MethodGet,
			Path:   next,
			Query:  nextQuery,
		})
		if err != nil {
			return nil, err
		}

		var envelope listEnvelope
		if err := jsoniter.Unmarshal(resp.Body, &envelope); err != nil {
			return nil, ierr.WithError(err).
				WithHint("The remote service returned an unexpected payload").
				Mark(ierr.ErrHTTPClient)
		}

		var page []T
		if len(envelope.Value) > 0 {
			if err := jsoniter.Unmarshal(envelope.Value, &page); err != nil {
				return nil, ierr.WithError(err).
					WithHint("The remote service returned an unexpected payload").
					Mark(ierr.ErrHTTPClient)
			}
		}
		out = append(out, page...)

		// nextLink already carries the query string
		next = envelope.NextLink
		nextQuery = nil
	}

	return out, nil
}

func (c *client) baseQuery() url.Values {
	q := url.Values{}
	if c.pageSize > 0 {
		q.Set("$top", strconv.Itoa(c.pageSize))
	}
	return q
}

// --- mobile apps ---

type wireMobileApp struct {
	ODataType    string    `json:"@odata.type"`
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Description  string    `json:"description"`
	Publisher    string    `json:"publisher"`
	IsFeatured   bool      `json:"isFeatured"`
	CreatedDate  time.Time `json:"createdDateTime"`
	LastModified time.Time `json:"lastModifiedDateTime"`
}

func (w wireMobileApp) toDomain() *application.Application {
	appType := types.AppType(strings.TrimPrefix(w.ODataType, "#microsoft.graph."))
	return &application.Application{
		ID:           w.ID,
		DisplayName:  w.DisplayName,
		Description:  w.Description,
		Publisher:    w.Publisher,
		AppType:      appType,
		Platforms:    appType.Platforms(),
		IsFeatured:   w.IsFeatured,
		CreatedDate:  w.CreatedDate,
		LastModified: w.LastModified,
	}
}

func (c *client) ListMobileApps(ctx context.Context, search string) ([]*application.Application, error) {
	query := c.baseQuery()
	if search != "" {
		query.Set("$filter", "contains(displayName,'"+search+"')")
	}

	apps, err := listAll[wireMobileApp](ctx, c, "/deviceAppManagement/mobileApps", query)
	if err != nil {
		return nil, err
	}
	return lo.Map(apps, func(w wireMobileApp, _ int) *application.Application {
		return w.toDomain()
	}), nil
}

func (c *client) GetMobileApp(ctx context.Context, id string) (*application.Application, error) {
	resp, err := c.executor.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/deviceAppManagement/mobileApps/" + id,
	})
	if err != nil {
		return nil, err
	}

	var wire wireMobileApp
	if err := jsoniter.Unmarshal(resp.Body, &wire); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The remote service returned an unexpected payload").
			Mark(ierr.ErrHTTPClient)
	}
	return wire.toDomain(), nil
}

// --- assignments ---

type wireAssignmentTarget struct {
	ODataType string `json:"@odata.type"`
	GroupID   string `json:"groupId,omitempty"`
}

type wireAssignment struct {
	ID       string               `json:"id"`
	Intent   string               `json:"intent"`
	Target   wireAssignmentTarget `json:"target"`
	Settings *wireSettings        `json:"settings,omitempty"`
}

type wireSettings struct {
	ODataType            string `json:"@odata.type,omitempty"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	DeliveryOptimization string `json:"deliveryOptimizationPriority,omitempty"`
}

func targetTypeFromOData(odataType string) types.TargetType {
	switch {
	case strings.Contains(odataType, "allDevicesAssignmentTarget"):
		return types.TargetTypeAllDevices
	case strings.Contains(odataType, "allLicensedUsersAssignmentTarget"):
		return types.TargetTypeAllUsers
	default:
		return types.TargetTypeGroup
	}
}

func (c *client) FetchAssignments(ctx context.Context, appID string) ([]*assignment.Assignment, error) {
	wires, err := listAll[wireAssignment](ctx, c, "/deviceAppManagement/mobileApps/"+appID+"/assignments", nil)
	if err != nil {
		return nil, err
	}

	out := make([]*assignment.Assignment, 0, len(wires))
	for _, w := range wires {
		a := &assignment.Assignment{
			ID:            w.ID,
			ApplicationID: appID,
			GroupID:       w.Target.GroupID,
			TargetType:    targetTypeFromOData(w.Target.ODataType),
			Intent:        types.AssignmentIntent(w.Intent),
			Status:        types.AssignmentStatusSuccess,
		}
		if w.Settings != nil {
			a.Settings = &assignment.AssignmentSettings{
				NotificationsEnabled: w.Settings.NotificationsEnabled,
				DeliveryOptimization: w.Settings.DeliveryOptimization,
			}
		}
		out = append(out, a)
	}
	return out, nil
}

type assignPayload struct {
	MobileAppAssignments []wireAppAssignment `json:"mobileAppAssignments"`
}

type wireAppAssignment struct {
	ODataType string               `json:"@odata.type"`
	Intent    string               `json:"intent"`
	Target    wireAssignmentTarget `json:"target"`
	Settings  *wireSettings        `json:"settings,omitempty"`
}

// AssignApp sends one batched write assigning every target in the batch to
// the application. Targets already assigned with another intent are replaced
// by the remote service within the same write.
func (c *client) AssignApp(ctx context.Context, appID string, batch []*assignment.Assignment) error {
	payload := assignPayload{
		MobileAppAssignments: make([]wireAppAssignment, 0, len(batch)),
	}

	for _, a := range batch {
		wire := wireAppAssignment{
			ODataType: "#microsoft.graph.mobileAppAssignment",
			Intent:    a.Intent.String(),
			Target: wireAssignmentTarget{
				ODataType: a.TargetType.ODataType(),
			},
		}
		if !a.TargetType.IsBuiltIn() {
			wire.Target.GroupID = a.GroupID
		}
		if a.Settings != nil {
			wire.Settings = &wireSettings{
				NotificationsEnabled: a.Settings.NotificationsEnabled,
				DeliveryOptimization: a.Settings.DeliveryOptimization,
			}
		}
		payload.MobileAppAssignments = append(payload.MobileAppAssignments, wire)
	}

	_, err := c.executor.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/deviceAppManagement/mobileApps/" + appID + "/assign",
		Body:   payload,
	})
	return err
}

// --- groups ---

type wireGroup struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"displayName"`
	Description     string    `json:"description"`
	SecurityEnabled bool      `json:"securityEnabled"`
	MailEnabled     bool      `json:"mailEnabled"`
	GroupTypes      []string  `json:"groupTypes"`
	MembershipRule  string    `json:"membershipRule"`
	CreatedDate     time.Time `json:"createdDateTime"`
}

func (w wireGroup) toDomain() *group.DeviceGroup {
	return &group.DeviceGroup{
		ID:              w.ID,
		DisplayName:     w.DisplayName,
		Description:     w.Description,
		SecurityEnabled: w.SecurityEnabled,
		MailEnabled:     w.MailEnabled,
		IsDynamic:       lo.Contains(w.GroupTypes, "DynamicMembership"),
		MembershipRule:  w.MembershipRule,
		TargetType:      types.TargetTypeGroup,
		CreatedDate:     w.CreatedDate,
	}
}

func (c *client) ListGroups(ctx context.Context, search string) ([]*group.DeviceGroup, error) {
	query := c.baseQuery()
	if search != "" {
		query.Set("$filter", "startswith(displayName,'"+search+"')")
	}

	groups, err := listAll[wireGroup](ctx, c, "/groups", query)
	if err != nil {
		return nil, err
	}
	return lo.Map(groups, func(w wireGroup, _ int) *group.DeviceGroup {
		return w.toDomain()
	}), nil
}

func (c *client) GetGroup(ctx context.Context, id string) (*group.DeviceGroup, error) {
	resp, err := c.executor.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/groups/" + id,
	})
	if err != nil {
		return nil, err
	}

	var wire wireGroup
	if err := jsoniter.Unmarshal(resp.Body, &wire); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The remote service returned an unexpected payload").
			Mark(ierr.ErrHTTPClient)
	}
	return wire.toDomain(), nil
}

// --- managed devices ---

func (c *client) ListManagedDevices(ctx context.Context) ([]*device.ManagedDevice, error) {
	return listAll[*device.ManagedDevice](ctx, c, "/deviceManagement/managedDevices", c.baseQuery())
}

// --- audit events ---

func (c *client) ListAuditEvents(ctx context.Context, filter *auditlog.Filter) ([]*auditlog.AuditEvent, error) {
	query := c.baseQuery()
	if filter != nil {
		var clauses []string
		if filter.Category != "" {
			clauses = append(clauses, "category eq '"+filter.Category+"'")
		}
		if filter.From != nil {
			clauses = append(clauses, "activityDateTime ge "+filter.From.UTC().Format(time.RFC3339))
		}
		if filter.To != nil {
			clauses = append(clauses, "activityDateTime le "+filter.To.UTC().Format(time.RFC3339))
		}
		if len(clauses) > 0 {
			query.Set("$filter", strings.Join(clauses, " and "))
		}
	}

	return listAll[*auditlog.AuditEvent](ctx, c, "/deviceManagement/auditEvents", query)
}
