package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// HRUser 招聘方用户表
// APIKey用于请求鉴权，所有岗位与候选人数据都按HR用户隔离。
type HRUser struct {
	UserID    string    `gorm:"type:char(36);primaryKey"`
	Username  string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex:idx_hr_users_email_unique"`
	APIKey    string    `gorm:"type:char(64);not null;uniqueIndex:idx_hr_users_api_key_unique"`
	CreatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (HRUser) TableName() string {
	return "hr_users"
}

// JobPosting 岗位表
type JobPosting struct {
	JobID           string         `gorm:"type:char(36);primaryKey"`
	HRUserID        string         `gorm:"type:char(36);not null;index:idx_job_postings_hr_user_id"`
	JobTitle        string         `gorm:"type:varchar(255);not null"`
	SalaryRange     string         `gorm:"type:varchar(100)"`
	ExperienceLevel string         `gorm:"type:varchar(100)"`
	JobType         string         `gorm:"type:varchar(50)"`
	SkillsJSON      datatypes.JSON `gorm:"type:json"`
	Description     string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_job_postings_created_at"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	HRUser *HRUser `gorm:"foreignKey:HRUserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// CandidateProfile 候选人评估记录表
// 每次简历上传成功解析后写入一条，评估明细以JSON列存储。
type CandidateProfile struct {
	CandidateID     string         `gorm:"type:char(36);primaryKey"`
	JobID           string         `gorm:"type:char(36);not null;index:idx_candidate_profiles_job_score,priority:1"`
	Name            string         `gorm:"type:varchar(255)"`
	Email           string         `gorm:"type:varchar(255)"`
	SkillsJSON      datatypes.JSON `gorm:"type:json"`
	ProjectsJSON    datatypes.JSON `gorm:"type:json"`
	Education       string         `gorm:"type:text"`
	Score           int            `gorm:"not null;default:0;index:idx_candidate_profiles_job_score,priority:2"`
	StrengthsJSON   datatypes.JSON `gorm:"type:json"`
	WeaknessesJSON  datatypes.JSON `gorm:"type:json"`
	Shortlisted     bool           `gorm:"not null;default:false;index:idx_candidate_profiles_shortlisted"`
	ResumeObjectKey string         `gorm:"type:varchar(1024)"`
	OriginalName    string         `gorm:"type:varchar(255)"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Job *JobPosting `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}

// StringsToJSON 把字符串切片编码为JSON列值
// nil切片编码为空数组，保证列值始终是合法JSON。
func StringsToJSON(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// JSONToStrings 把JSON列值解码为字符串切片，解码失败返回空切片
func JSONToStrings(data datatypes.JSON) []string {
	if len(data) == 0 {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return []string{}
	}
	return items
}
