// Package config loads the nixtrack console configuration.
//
// # Configuration Discovery
//
// Load resolves settings in this order, later sources winning:
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/nixtrack/config.toml)
//  3. A .env file in the working directory, when present
//  4. NIXTRACK_* environment variables
//
// A missing config file is not an error.
//
// # TOML Format
//
//	api_url = "https://nixtrack.ingeniosoft.net/api"
//	request_timeout = 30
//	session_path = "~/.config/nixtrack/session.toml"
//	metrics_addr = "127.0.0.1:9464"
//
//	[attachments]
//	s3_bucket = "field-photos"
//	s3_region = "us-east-1"
//	s3_endpoint = "http://127.0.0.1:9000"
//	s3_path_style = true
//
// Every field is optional. request_timeout is in seconds. The metrics
// endpoint is served only when metrics_addr is set, and the S3 attachment
// source only when s3_bucket is set.
//
// # Environment
//
//   - NIXTRACK_API_URL
//   - NIXTRACK_REQUEST_TIMEOUT (seconds)
//   - NIXTRACK_SESSION_PATH
//   - NIXTRACK_METRICS_ADDR
//   - NIXTRACK_S3_ACCESS_KEY_ID, NIXTRACK_S3_SECRET_ACCESS_KEY
//
// Static keys (s3_access_key_id and s3_secret_access_key, or the variables
// above) take precedence for the attachment bucket. Without them the default
// AWS chain applies (AWS_ACCESS_KEY_ID, shared profiles and so on).
//
// The console log lives next to the session file; see Config.LogPath.
package config
