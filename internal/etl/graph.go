// Package etl implements the daily SharePoint import: fetch configured
// workbooks from a Microsoft Graph drive and load them into the warehouse
// database for the dashboards.
package etl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bwops/metastack/config"
)

const graphBase = "https://graph.microsoft.com/v1.0"

// GraphClient talks to Microsoft Graph with client-credentials auth.
type GraphClient struct {
	cfg     config.EtlConfig
	token   string
	driveID string
}

func NewGraphClient(cfg config.EtlConfig) *GraphClient {
	return &GraphClient{cfg: cfg}
}

// Authenticate obtains an app-only access token from Azure AD.
func (c *GraphClient) Authenticate(ctx context.Context) error {
	if c.cfg.TenantID == "" || c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return errors.New("missing AZURE_TENANT_ID / AZURE_CLIENT_ID / AZURE_CLIENT_SECRET")
	}

	var body struct {
		AccessToken      string `json:"access_token"`
		ErrorDescription string `json:"error_description"`
	}
	var code int
	url := fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", c.cfg.TenantID)
	err := gout.POST(url).
		WithContext(ctx).
		SetTimeout(30 * time.Second).
		SetWWWForm(gout.H{
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
			"scope":         "https://graph.microsoft.com/.default",
			"grant_type":    "client_credentials",
		}).
		BindJSON(&body).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "token request")
	}
	if code != 200 || body.AccessToken == "" {
		return fmt.Errorf("token request failed: status=%d %s", code, body.ErrorDescription)
	}
	c.token = body.AccessToken
	zap.L().Info("graph access token obtained")
	return nil
}

func (c *GraphClient) authHeader() gout.H {
	return gout.H{"Authorization": "Bearer " + c.token}
}

// ResolveDrive finds the configured document drive on the site.
func (c *GraphClient) ResolveDrive(ctx context.Context) error {
	var body struct {
		Value []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"value"`
	}
	var code int
	url := fmt.Sprintf("%s/sites/%s/drives", graphBase, c.cfg.SiteID)
	err := gout.GET(url).
		WithContext(ctx).
		SetTimeout(30 * time.Second).
		SetHeader(c.authHeader()).
		BindJSON(&body).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "list drives")
	}
	if code != 200 {
		return fmt.Errorf("list drives failed: status=%d", code)
	}

	want := c.cfg.DriveName
	if want == "" {
		want = "Documents"
	}
	for _, d := range body.Value {
		if d.Name == want {
			c.driveID = d.ID
			zap.L().Info("resolved graph drive", zap.String("name", want), zap.String("id", d.ID))
			return nil
		}
	}
	return fmt.Errorf("drive %q not found on site", want)
}

// Download fetches one drive item by path into a temp file and returns its
// local path. The caller removes the file after import.
func (c *GraphClient) Download(ctx context.Context, drivePath string) (string, error) {
	if c.driveID == "" {
		return "", errors.New("drive not resolved")
	}

	var meta struct {
		Name        string `json:"name"`
		DownloadURL string `json:"@microsoft.graph.downloadUrl"`
	}
	var code int
	url := fmt.Sprintf("%s/sites/%s/drives/%s/root:/%s", graphBase, c.cfg.SiteID, c.driveID, drivePath)
	err := gout.GET(url).
		WithContext(ctx).
		SetTimeout(30 * time.Second).
		SetHeader(c.authHeader()).
		BindJSON(&meta).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrapf(err, "file metadata %s", drivePath)
	}
	if code != 200 || meta.DownloadURL == "" {
		return "", fmt.Errorf("no download url for %s: status=%d", drivePath, code)
	}

	var content []byte
	err = gout.GET(meta.DownloadURL).
		WithContext(ctx).
		SetTimeout(2 * time.Minute).
		BindBody(&content).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrapf(err, "download %s", drivePath)
	}
	if code != 200 {
		return "", fmt.Errorf("download %s failed: status=%d", drivePath, code)
	}

	tmp, err := os.CreateTemp("", "metastack-etl-*.xlsx")
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if _, err := tmp.Write(content); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	zap.L().Info("downloaded workbook",
		zap.String("path", drivePath),
		zap.Int("bytes", len(content)))
	return tmp.Name(), nil
}
