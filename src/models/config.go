package models

// MConfig Structure
type MConfig struct {
	Name       string         `yaml:"name"`
	Host       string         `yaml:"host"`
	Port       int            `yaml:"port"`
	LogLevel   string         `yaml:"log_level"`
	GrpcHost   string         `yaml:"grpc_host"`
	GrpcPort   int            `yaml:"grpc_port"`
	StaticPort int            `yaml:"static_port"`
	StaticDir  string         `yaml:"static_dir"`
	Redirect   string         `yaml:"static_redirect"` // Optional, redirect the portal instead of serving StaticDir
	Storage    MStorageConfig `yaml:"storage"`
	Network    MNetworkConfig `yaml:"network"`
	Proxy      MProxyConfig   `yaml:"proxy"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	DataRetentionDays  int    `yaml:"data_retention_days"`
}

type MNetworkConfig struct {
	UserAgent          string `yaml:"user_agent"` // Optional, fixed UA instead of rotation
	MaxBodyBytes       int64  `yaml:"max_body_bytes"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

type MProxyConfig struct {
	MethodsFile string `yaml:"methods_file"`
	HistorySize int    `yaml:"history_size"`
}
