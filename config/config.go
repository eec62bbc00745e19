package config

import (
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/config"
	"github.com/evgeny-myasishchev/money-manager/pkg/version"
)

var appEnv = config.NewAppEnv(version.AppName)
var configBuilder = config.NewBuilder(appEnv)

var localParams = configBuilder.NewParamsBuilder(configBuilder.WithLocalSource())

// Do not change vars below at runtime
var (
	LogLevel = localParams.NewParam("log/logLevel").Default("info").String()
	LogMode  = localParams.NewParam("log/mode").Default("json").String()

	ServerPort            = localParams.NewParam("server/port").Default(8080).Int()
	ServerShutdownTimeout = localParams.NewParam("server/shutdown-timeout").Default("10s").Duration()

	StorageDriver  = localParams.NewParam("storage/driver").String()
	StorageDSN     = localParams.NewParam("storage/data-source-name").String()
	StorageMigrate = localParams.NewParam("storage/migrate-on-start").Default(true).Bool()

	LedgerReadRetries = localParams.NewParam("ledger/read-retries").Default(3).Int()
	LedgerRetryDelay  = localParams.NewParam("ledger/retry-delay").Default("50ms").Duration()

	WalletAPI     = localParams.NewParam("wallet/api").String()
	WalletOwner   = localParams.NewParam("wallet/owner").Default("").String()
	WalletTimeout = localParams.NewParam("wallet/timeout").Default("30s").Duration()
)

// Log represents logger specific options
type Log struct {
	Level config.StringVal
	Mode  config.StringVal
}

// Server represents http server settings
type Server struct {
	Port            config.IntVal
	ShutdownTimeout config.DurationVal
}

// Storage represents storage settings
type Storage struct {
	Driver config.StringVal
	DSN    config.StringVal

	// MigrateOnStart applies pending migrations when the server starts
	MigrateOnStart config.BoolVal
}

// Ledger represents ledger engine settings
type Ledger struct {
	ReadRetries config.IntVal
	RetryDelay  config.DurationVal
}

// Wallet is a config of the wallet cli
type Wallet struct {
	API     config.StringVal
	Owner   config.StringVal
	Timeout config.DurationVal
}

// AppConfig is a toplevel config structure
type AppConfig struct {
	Log     Log
	Server  Server
	Storage Storage
	Ledger  Ledger
	Wallet  Wallet
}

// LoadAppConfig will load and initialize app config structure
func LoadAppConfig() (*AppConfig, error) {
	cfg, err := configBuilder.LoadConfig()
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Log: Log{
			Level: cfg.StringParam(LogLevel),
			Mode:  cfg.StringParam(LogMode),
		},
		Server: Server{
			Port:            cfg.IntParam(ServerPort),
			ShutdownTimeout: cfg.DurationParam(ServerShutdownTimeout),
		},
		Storage: Storage{
			Driver:         cfg.StringParam(StorageDriver),
			DSN:            cfg.StringParam(StorageDSN),
			MigrateOnStart: cfg.BoolParam(StorageMigrate),
		},
		Ledger: Ledger{
			ReadRetries: cfg.IntParam(LedgerReadRetries),
			RetryDelay:  cfg.DurationParam(LedgerRetryDelay),
		},
		Wallet: Wallet{
			API:     cfg.StringParam(WalletAPI),
			Owner:   cfg.StringParam(WalletOwner),
			Timeout: cfg.DurationParam(WalletTimeout),
		},
	}, nil
}
