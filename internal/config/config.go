package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ProviderToggle struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Providers struct {
		JSearch   ProviderToggle `yaml:"jsearch"`
		LinkedIn  ProviderToggle `yaml:"linkedin"`
		Boards    ProviderToggle `yaml:"boards"`
		Hunter    ProviderToggle `yaml:"hunter"`
		Clearout  ProviderToggle `yaml:"clearout"`
		Anymail   ProviderToggle `yaml:"anymail"`
		Instantly ProviderToggle `yaml:"instantly"`
		Smartlead ProviderToggle `yaml:"smartlead"`
	} `yaml:"providers"`

	Orchestrator struct {
		DefaultTarget      int     `yaml:"default_target"`
		EarlyStopRatio     float64 `yaml:"early_stop_ratio"`
		MaxCompanies       int     `yaml:"max_companies"`
		ContactsPerCompany int     `yaml:"contacts_per_company"`
		RequestsPerSecond  float64 `yaml:"requests_per_second"`
	} `yaml:"orchestrator"`

	Campaigns struct {
		Type   string `yaml:"type"` // hiring_managers | candidates
		Sender struct {
			Name  string `yaml:"name"`
			Email string `yaml:"email"`
			Title string `yaml:"title"`
		} `yaml:"sender"`
	} `yaml:"campaigns"`

	Replies struct {
		Enabled     bool   `yaml:"enabled"`
		IMAPHost    string `yaml:"imap_host"`
		IMAPPort    int    `yaml:"imap_port"`
		Username    string `yaml:"username"`
		Mailbox     string `yaml:"mailbox"`
		PollSeconds int    `yaml:"poll_seconds"`
	} `yaml:"replies"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
