package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/envutil"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.Str("POSTGRES_HOST", "localhost")
	port := envutil.Str("POSTGRES_PORT", "5432")
	user := envutil.Str("POSTGRES_USER", "postgres")
	password := envutil.Str("POSTGRES_PASSWORD", "")
	name := envutil.Str("POSTGRES_NAME", "athletelink")
	sslMode := envutil.Str("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslMode)

	log.Info("Connecting to Postgres...", "host", host, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	for _, stmt := range []string{
		`ALTER TABLE "contract_signature"
		 ADD CONSTRAINT "fk_contract_signature_contract_id"
		 FOREIGN KEY ("contract_id") REFERENCES "contract"("id") ON DELETE CASCADE`,
		`ALTER TABLE "contract"
		 ADD CONSTRAINT "fk_contract_deal_id"
		 FOREIGN KEY ("deal_id") REFERENCES "deal"("id") ON DELETE RESTRICT`,
		`ALTER TABLE "payment"
		 ADD CONSTRAINT "fk_payment_deal_id"
		 FOREIGN KEY ("deal_id") REFERENCES "deal"("id") ON DELETE RESTRICT`,
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			// Re-running migrations against an existing schema hits duplicate
			// constraint errors; those are fine.
			s.log.Debug("Foreign key statement skipped", "error", err)
		}
	}
	return nil
}

// AutoMigrate creates the ledger schema. Shared with the test harnesses so the
// service and its tests migrate the exact same model set.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Deal{},
		&types.Contract{},
		&types.ContractSignature{},
		&types.Payment{},
		&types.ConnectedPayoutAccount{},
		&types.Payout{},
		&types.EarningsRecord{},
	)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
