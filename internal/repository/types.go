package repository

import "time"

// ChannelListFilter 查询渠道列表的过滤条件
type ChannelListFilter struct {
	Page        int
	PageSize    int
	Search      string
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// QuestionnaireListFilter 查询问卷列表的过滤条件
type QuestionnaireListFilter struct {
	Page        int
	PageSize    int
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page          int
	PageSize      int
	Search        string
	Province      string
	City          string
	District      string
	ChannelID     string
	Status        string
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
}
