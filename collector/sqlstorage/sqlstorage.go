package sqlstorage

import (
	"encoding/json"
	"errors"

	"github.com/teandr/crawler/collector"
	"github.com/teandr/crawler/engine"
	"github.com/teandr/crawler/sqldb"
	"go.uber.org/zap"
)

type SqlStore struct {
	// dataDocker 分批输出的结果缓存
	dataDocker  []*collector.DataCell
	columnNames []sqldb.Field
	db          sqldb.DBer
	Table       map[string]struct{}
	options
}

func NewSqlStore(opts ...Option) (*SqlStore, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	s := &SqlStore{}
	s.options = options
	s.Table = map[string]struct{}{}
	db, err := sqldb.NewSqlDB(
		sqldb.WithDSN(s.dsn),
		sqldb.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	s.db = db

	return s, nil
}

func (s *SqlStore) Save(dataCells ...*collector.DataCell) error {
	for _, cell := range dataCells {
		tableName := cell.GetTableName()
		if tableName == "" {
			return errors.New("no task field")
		}
		if _, ok := s.Table[tableName]; !ok {
			columnNames := s.getFields(cell)
			err := s.db.CreateTable(sqldb.TableData{
				TableName:   tableName,
				ColumnNames: columnNames,
				AutoKey:     true,
			})
			if err != nil {
				s.logger.Error("create table failed", zap.Error(err))
				return err
			}
			s.Table[tableName] = struct{}{}
		}
		s.dataDocker = append(s.dataDocker, cell)
		if len(s.dataDocker) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *SqlStore) getFields(cell *collector.DataCell) []sqldb.Field {
	taskName := cell.GetTaskName()
	ruleName, _ := cell.Data["Rule"].(string)
	fields := engine.GetFields(taskName, ruleName)
	var columnNames []sqldb.Field
	for _, field := range fields {
		columnNames = append(columnNames, sqldb.Field{
			Title: field,
			Type:  "MEDIUMTEXT",
		})
	}
	columnNames = append(columnNames, sqldb.Field{
		Title: "Url",
		Type:  "VARCHAR(255)",
	}, sqldb.Field{
		Title: "Time",
		Type:  "VARCHAR(255)",
	})

	return columnNames
}

// Flush 将缓存的数据批量写入，无论成败都清空缓存。
// 缓存里可能混着多个任务的结果，按各自的表分组写入
func (s *SqlStore) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}
	defer func() {
		s.dataDocker = nil
	}()

	groups := map[string][]*collector.DataCell{}
	var order []string
	for _, cell := range s.dataDocker {
		name := cell.GetTableName()
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], cell)
	}
	for _, name := range order {
		if err := s.flushTable(groups[name]); err != nil {
			return err
		}
	}

	return nil
}

func (s *SqlStore) flushTable(cells []*collector.DataCell) error {
	args := make([]any, 0, len(cells))
	for _, dataCell := range cells {
		ruleName, ok := dataCell.Data["Rule"].(string)
		if !ok {
			return errors.New("no rule field")
		}
		taskName, ok := dataCell.Data["Task"].(string)
		if !ok {
			return errors.New("no task field")
		}
		fields := engine.GetFields(taskName, ruleName)
		data, ok := dataCell.Data["Data"].(map[string]any)
		if !ok {
			return errors.New("no data field")
		}
		value := []string{}
		for _, field := range fields {
			v := data[field]
			switch v := v.(type) {
			case nil:
				value = append(value, "")
			case string:
				value = append(value, v)
			default:
				j, err := json.Marshal(v)
				if err != nil {
					s.logger.Error("marshal data failed", zap.Error(err))
					return err
				}
				value = append(value, string(j))
			}
		}
		url, _ := dataCell.Data["Url"].(string)
		createdAt, _ := dataCell.Data["Time"].(string)
		value = append(value, url, createdAt)
		for _, v := range value {
			args = append(args, v)
		}
	}

	err := s.db.Insert(sqldb.TableData{
		TableName:   cells[0].GetTableName(),
		ColumnNames: s.getFields(cells[0]),
		Args:        args,
		DataCount:   len(cells),
	})
	if err != nil {
		s.logger.Error("insert data failed", zap.Error(err))
	}

	return err
}
