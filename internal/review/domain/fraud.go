package domain

import (
	"gorm.io/gorm"
)

// FraudReason 欺诈标准原因（闭集）
type FraudReason string

const (
	ReasonContaTerceiro   FraudReason = "CONTA_TERCEIRO"
	ReasonDocumentoFalso  FraudReason = "DOCUMENTO_FALSO"
	ReasonMultiplicidade  FraudReason = "MULTIPLAS_CONTAS"
	ReasonChargebackAbuso FraudReason = "ABUSO_CHARGEBACK"
	ReasonBonusAbuso      FraudReason = "ABUSO_BONUS"
	ReasonLavagemSuspeita FraudReason = "SUSPEITA_LAVAGEM"
	ReasonOutro           FraudReason = "OUTRO"
)

// Valid 判断标准原因是否在闭集内
func (r FraudReason) Valid() bool {
	switch r {
	case ReasonContaTerceiro, ReasonDocumentoFalso, ReasonMultiplicidade,
		ReasonChargebackAbuso, ReasonBonusAbuso, ReasonLavagemSuspeita, ReasonOutro:
		return true
	}
	return false
}

// FraudReport 欺诈上报，只追加。不存审核外键，读取时按
// (client_id, 归一化 analysis_date) 与审核记录匹配——上报可以晚于
// 也可以早于对应审核的创建，匹配必须对插入顺序对称。
type FraudReport struct {
	gorm.Model
	ClientID     string      `gorm:"column:client_id;type:varchar(64);index;not null" json:"client_id"`
	AnalysisDate string      `gorm:"column:analysis_date;type:varchar(64);not null" json:"analysis_date"`
	Description  string      `gorm:"column:description;type:text;not null" json:"description"`
	Reason       FraudReason `gorm:"column:reason;type:varchar(32);not null" json:"reason"`
	FreeReason   string      `gorm:"column:free_reason;type:text" json:"free_reason"`
	AnalystID    string      `gorm:"column:analyst_id;type:varchar(64);not null" json:"analyst_id"`
}

func (FraudReport) TableName() string { return "fraud_reports" }

// TaintKey 欺诈匹配键。两侧日期都先归一化，否则时间戳和纯日期字符串
// 会产生假阴性。
func TaintKey(clientID, date string) string {
	normalized, err := NormalizeDate(date)
	if err != nil {
		normalized = date
	}
	return clientID + "|" + normalized
}
