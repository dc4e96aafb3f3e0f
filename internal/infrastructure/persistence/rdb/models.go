package rdb

import (
	"time"

	"gorm.io/gorm"
)

// UserModel GORM用户模型
// domain/user/entity.go是领域实体,不依赖GORM,Repository负责两者转换
type UserModel struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"size:50;not null;comment:姓名"`
	Email       string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password    string         `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Role        string         `gorm:"index;size:16;not null;default:student;comment:角色(admin/librarian/student)"`
	AdmissionID string         `gorm:"size:50;comment:学号"`
	EmployeeID  string         `gorm:"size:50;comment:工号"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// quantity是可借副本数,只通过条件UPDATE增减
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author      string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Category    string         `gorm:"index;size:50;not null;comment:分类"`
	Quantity    int            `gorm:"not null;default:0;check:chk_books_quantity,quantity >= 0;comment:可借副本数"`
	Publisher   string         `gorm:"size:100;comment:出版社"`
	Description string         `gorm:"type:text;comment:图书描述"`
	AddedBy     uint           `gorm:"index;comment:录入馆员ID"`
	CreatedAt   time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (BookModel) TableName() string {
	return "books"
}

// TransactionModel GORM借阅记录模型
// 借阅记录只追加和归还,不删除,因此没有DeletedAt
type TransactionModel struct {
	ID         uint       `gorm:"primaryKey"`
	TxnNo      string     `gorm:"uniqueIndex;size:32;not null;comment:借阅单号(ULID)"`
	BookID     uint       `gorm:"index;not null;comment:图书ID"`
	MemberID   uint       `gorm:"index;not null;comment:借阅人ID"`
	IssueDate  time.Time  `gorm:"index;not null;comment:借出时间"`
	DueDate    time.Time  `gorm:"index;not null;comment:应还时间"`
	ReturnDate *time.Time `gorm:"comment:归还时间"`
	Status     string     `gorm:"index;size:16;not null;default:issued;comment:状态(issued/returned)"`
	Fine       int64      `gorm:"not null;default:0;comment:逾期罚金"`
	IssuedBy   uint       `gorm:"comment:办理借出的馆员ID"`
	ReturnedBy uint       `gorm:"comment:办理归还的馆员ID"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}
