package collector

// Storager 条目存储，接收解析出的数据单元
type Storager interface {
	Save(datas ...*DataCell) error
}

// DataCell 一条待存储的数据，固定携带Task/Rule/Data/Url/Time键
type DataCell struct {
	Data map[string]any
}

// GetTableName 表名即任务名
func (d *DataCell) GetTableName() string {
	name, _ := d.Data["Task"].(string)
	return name
}

func (d *DataCell) GetTaskName() string {
	name, _ := d.Data["Task"].(string)
	return name
}
