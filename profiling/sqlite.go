package profiling

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

// ProfResult is one measured sample.
type ProfResult struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index:idx_run_subject_case;size:64"`
	Subject   string `gorm:"index:idx_run_subject_case;size:32"`
	CaseName  string `gorm:"index:idx_run_subject_case;size:32"`
	Idx       int
	Result    int64
	CreatedAt time.Time
}

func (ProfResult) TableName() string {
	return "prof_results"
}

// SQLiteSink stores every sample in the prof_results table so runs can
// be compared with SQL.
type SQLiteSink struct {
	db    *gorm.DB
	runID string
}

// OpenSQLite opens dsn with the pure Go sqlite driver and migrates the
// results table. ":memory:" keeps everything in process.
func OpenSQLite(dsn string, logger xlog.XLogger) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if logger != nil {
		cfg.Logger = xlog.NewGormXLogger(logger, xlog.WithGormXLoggerIgnoreRecord404Err())
	}
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "open sqlite "+dsn)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	// One connection, an in-memory database lives per connection.
	sqlDB.SetMaxOpenConns(1)
	if err = db.AutoMigrate(&ProfResult{}); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "migrate prof_results")
	}
	return db, nil
}

func NewSQLiteSink(db *gorm.DB, runID string) *SQLiteSink {
	return &SQLiteSink{db: db, runID: runID}
}

func (s *SQLiteSink) Write(ctx context.Context, res Result) error {
	rows := lo.Map(res.Values, func(v int64, i int) *ProfResult {
		return &ProfResult{
			RunID:    s.runID,
			Subject:  res.Subject,
			CaseName: res.Case,
			Idx:      i + 1,
			Result:   v,
		}
	})
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return infra.WrapErrorStackWithMessage(err, "insert "+res.FileName())
	}
	return nil
}

// Averages returns the mean result per subject for a case of this run.
func (s *SQLiteSink) Averages(ctx context.Context, caseName string) (map[string]float64, error) {
	type row struct {
		Subject string
		Avg     float64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&ProfResult{}).
		Select("subject, AVG(result) AS avg").
		Where("run_id = ? AND case_name = ?", s.runID, caseName).
		Group("subject").
		Scan(&rows).Error
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return lo.SliceToMap(rows, func(r row) (string, float64) {
		return r.Subject, r.Avg
	}), nil
}

func (s *SQLiteSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
