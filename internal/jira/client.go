package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PhelGc/fieldops/internal/config"
)

// ErrNotConfigured falta JIRA_URL o JIRA_PROJECT
var ErrNotConfigured = errors.New("Jira no está configurado (JIRA_URL y JIRA_PROJECT)")

// maxPages tope de páginas por consulta
const maxPages = 50

// Client cliente de Jira usando API v3 directamente
type Client struct {
	baseURL       string
	username      string
	apiToken      string
	project       string
	status        string
	assignee      string
	currentSprint bool
	conclusion    []string
	httpClient    *http.Client
}

// Issue ticket de Jira con los datos que alimentan el importador
type Issue struct {
	Key         string
	Title       string
	Description string
	Conclusion  string
	Status      string
	IssueType   string
	Assignee    string
	CreatedDate time.Time
	UpdatedDate time.Time
	// Fields campos crudos del ticket (incluye customfield_*)
	Fields map[string]any
}

// searchResponse respuesta de /rest/api/3/search/jql
type searchResponse struct {
	Issues        []json.RawMessage `json:"issues"`
	NextPageToken string            `json:"nextPageToken"`
	IsLast        bool              `json:"isLast"`
}

type jiraIssue struct {
	Key    string     `json:"key"`
	Fields jiraFields `json:"fields"`
}

type jiraFields struct {
	Summary     string          `json:"summary"`
	Description any             `json:"description"`
	Status      jiraNamed       `json:"status"`
	IssueType   jiraNamed       `json:"issuetype"`
	Assignee    *jiraUser       `json:"assignee"`
	Resolution  *jiraResolution `json:"resolution"`
	Created     string          `json:"created"`
	Updated     string          `json:"updated"`
}

type jiraNamed struct {
	Name string `json:"name"`
}

type jiraUser struct {
	DisplayName string `json:"displayName"`
}

type jiraResolution struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Campos custom donde se escribe la conclusión según el tipo de ticket
var defaultConclusionFields = []string{"customfield_10208", "customfield_10207", "customfield_10206"}

// NewClient crea un nuevo cliente de Jira usando API v3
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if cfg.URL == "" || cfg.Project == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		username:      cfg.Username,
		apiToken:      cfg.APIToken,
		project:       cfg.Project,
		status:        cfg.Status,
		assignee:      cfg.Assignee,
		currentSprint: cfg.CurrentSprint,
		conclusion:    defaultConclusionFields,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// JQL consulta armada a partir de los filtros configurados
func (c *Client) JQL() string {
	// Comillas para manejar espacios
	jql := "project = \"" + c.project + "\""

	if c.status != "" {
		jql += " AND status = \"" + c.status + "\""
	}

	// Múltiples assignees separados por coma se unen con OR
	var assignees []string
	for _, a := range strings.Split(c.assignee, ",") {
		if a = strings.TrimSpace(a); a != "" {
			assignees = append(assignees, "assignee = \""+a+"\"")
		}
	}
	switch len(assignees) {
	case 0:
	case 1:
		jql += " AND " + assignees[0]
	default:
		jql += " AND (" + strings.Join(assignees, " OR ") + ")"
	}

	if c.currentSprint {
		jql += " AND sprint in openSprints()"
	}

	return jql + " ORDER BY updated DESC"
}

// GetIssues obtiene los tickets según los filtros configurados, recorriendo todas las páginas
func (c *Client) GetIssues(ctx context.Context) ([]*Issue, error) {
	var issues []*Issue
	token := ""

	for page := 0; page < maxPages; page++ {
		resp, err := c.search(ctx, token)
		if err != nil {
			return nil, err
		}

		for _, raw := range resp.Issues {
			issue, err := parseIssue(raw, c.conclusion)
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}

		if resp.IsLast || resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}

	return issues, nil
}

func (c *Client) search(ctx context.Context, pageToken string) (*searchResponse, error) {
	params := url.Values{}
	params.Add("jql", c.JQL())
	params.Add("maxResults", "100")
	params.Add("fields", "*all")
	if pageToken != "" {
		params.Add("nextPageToken", pageToken)
	}

	apiURL := c.baseURL + "/rest/api/3/search/jql?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creando request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error haciendo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error leyendo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error en API de Jira (status %d): %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("error parseando response: %w", err)
	}
	return &out, nil
}

// parseIssue decodifica un ticket dos veces: tipado para los campos estándar
// y crudo para los campos custom
func parseIssue(raw json.RawMessage, conclusionFields []string) (*Issue, error) {
	var typed jiraIssue
	if err := json.Unmarshal(raw, &typed); err != nil {
		return nil, fmt.Errorf("error parseando issue: %w", err)
	}
	var rawIssue struct {
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(raw, &rawIssue); err != nil {
		return nil, fmt.Errorf("error parseando issue %s: %w", typed.Key, err)
	}

	f := typed.Fields
	issue := &Issue{
		Key:         typed.Key,
		Title:       f.Summary,
		Description: extractTextFromADF(f.Description),
		Status:      f.Status.Name,
		IssueType:   f.IssueType.Name,
		CreatedDate: parseJiraDate(f.Created),
		UpdatedDate: parseJiraDate(f.Updated),
		Fields:      rawIssue.Fields,
	}
	if f.Assignee != nil {
		issue.Assignee = f.Assignee.DisplayName
	}

	// Priorizar el campo custom sobre la resolución básica
	for _, name := range conclusionFields {
		if text := FieldText(rawIssue.Fields[name]); text != "" {
			issue.Conclusion = text
			break
		}
	}
	if issue.Conclusion == "" && f.Resolution != nil {
		issue.Conclusion = f.Resolution.Description
	}

	return issue, nil
}

// FieldText representación en texto de un valor de campo de Jira:
// cadenas, números, opciones de selección y documentos ADF
func FieldText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case []any:
		var parts []string
		for _, item := range val {
			if s := FieldText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		// Opción de select o usuario
		for _, k := range []string{"value", "name", "displayName"} {
			if s, ok := val[k].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		return extractTextFromADFMap(val)
	}
	return ""
}

// extractTextFromADF extrae texto de campos con formato ADF (Atlassian Document Format)
func extractTextFromADF(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case map[string]any:
		return extractTextFromADFMap(c)
	}
	return ""
}

// extractTextFromADFMap extrae recursivamente texto de un mapa ADF
func extractTextFromADFMap(contentMap map[string]any) string {
	var result strings.Builder

	if items, ok := contentMap["content"].([]any); ok {
		for _, item := range items {
			if itemMap, ok := item.(map[string]any); ok {
				if text := extractTextFromADFMap(itemMap); text != "" {
					result.WriteString(text)
					result.WriteString(" ")
				}
			}
		}
	}

	if text, ok := contentMap["text"].(string); ok {
		result.WriteString(text)
	}

	return strings.TrimSpace(result.String())
}

// parseJiraDate parsea fechas de Jira con manejo de diferentes formatos
func parseJiraDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, dateStr); err == nil {
			return parsed
		}
	}

	return time.Time{}
}
