package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

type DBer interface {
	CreateTable(TableData) error
	Insert(TableData) error
}

type SqlDB struct {
	options
	db *sql.DB
}

type Field struct {
	Title string
	Type  string
}

// TableData 一次建表或批量插入的描述。
// Args按行平铺，长度必须是len(ColumnNames)*DataCount
type TableData struct {
	TableName   string
	ColumnNames []Field
	Args        []any
	DataCount   int
	AutoKey     bool
}

func NewSqlDB(opts ...Option) (*SqlDB, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	db := &SqlDB{}
	db.options = options
	if err := db.OpenDB(); err != nil {
		return nil, err
	}

	return db, nil
}

func (s *SqlDB) OpenDB() error {
	db, err := sql.Open("mysql", s.dsn)
	if err != nil {
		return fmt.Errorf("open mysql failed:%w", err)
	}
	db.SetMaxOpenConns(s.maxConns)
	db.SetMaxIdleConns(s.maxConns)
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping mysql failed:%w", err)
	}

	s.db = db
	return nil
}

// quoteName 表名和列名来自任务规则，统一加反引号
func quoteName(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}

func (s *SqlDB) CreateTable(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("column can not be empty")
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteName(t.TableName))
	b.WriteString(" (")
	if t.AutoKey {
		b.WriteString("id INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,")
	}
	for i, c := range t.ColumnNames {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quoteName(c.Title))
		b.WriteString(" ")
		b.WriteString(c.Type)
	}
	b.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8;")

	stmt := b.String()
	s.logger.Debug("create table", zap.String("sql", stmt))
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("create table %s failed:%w", t.TableName, err)
	}

	return nil
}

func (s *SqlDB) Insert(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return errors.New("empty column")
	}
	if t.DataCount <= 0 {
		return errors.New("empty data")
	}
	if len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return fmt.Errorf("args count %d does not match %d columns x %d rows",
			len(t.Args), len(t.ColumnNames), t.DataCount)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteName(t.TableName))
	b.WriteString(" (")
	for i, c := range t.ColumnNames {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quoteName(c.Title))
	}
	b.WriteString(") VALUES ")
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(t.ColumnNames)), ",") + ")"
	for i := 0; i < t.DataCount; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(row)
	}
	b.WriteString(";")

	stmt := b.String()
	s.logger.Debug("insert table", zap.String("sql", stmt))
	if _, err := s.db.Exec(stmt, t.Args...); err != nil {
		return fmt.Errorf("insert into %s failed:%w", t.TableName, err)
	}

	return nil
}
