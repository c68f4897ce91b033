package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray 字符串数组类型，用于存储渠道标签等
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Channel 渠道管理表
type Channel struct {
	ID                       string      `gorm:"type:varchar(36);primaryKey" json:"id"`                      // 主键（UUID）
	ChannelNumber            string      `gorm:"type:varchar(60);uniqueIndex;not null" json:"channelNumber"` // 渠道编号
	ChannelName              string      `gorm:"type:varchar(120);not null" json:"channelName"`              // 渠道名称
	QuestionnaireID          *string     `gorm:"type:varchar(36);index" json:"questionnaireId"`              // 绑定问卷
	UVCount                  int64       `gorm:"not null;default:0" json:"uvCount"`                          // UV 访问次数
	QuestionnaireSubmitCount int64       `gorm:"not null;default:0" json:"questionnaireSubmitCount"`         // 问卷填写总数
	Remark                   string      `gorm:"type:varchar(500)" json:"remark"`                            // 备注
	ShortLink                *string     `gorm:"type:varchar(500);uniqueIndex" json:"shortLink"`             // 短链接（可为空，空值不参与唯一约束）
	Tags                     StringArray `gorm:"type:json" json:"tags"`                                      // 渠道标签
	DownloadLink             string      `gorm:"type:varchar(500)" json:"downloadLink"`                      // APP 下载链接
	IsDefault                bool        `gorm:"not null;default:false;index" json:"isDefault"`              // 是否默认渠道
	IsActive                 bool        `gorm:"not null;default:true;index" json:"isActive"`                // 是否启用
	CreatedAt                time.Time   `gorm:"index" json:"createdAt"`                                     // 创建时间
	UpdatedAt                time.Time   `json:"updatedAt"`                                                  // 修改时间
}

// TableName 指定表名
func (Channel) TableName() string {
	return "channels"
}

// ShortLinkValue 短链接字符串值，空指针返回空串
func (c *Channel) ShortLinkValue() string {
	if c == nil || c.ShortLink == nil {
		return ""
	}
	return *c.ShortLink
}
