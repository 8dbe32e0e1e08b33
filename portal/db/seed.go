package db

import (
	"accesshub/portal/model"

	"gorm.io/gorm"
)

var seedServices = []model.Service{
	{Name: "在庫管理システム", Description: "在庫管理システムの利用権限"},
	{Name: "人事評価システム", Description: "人事評価システムの利用権限"},
	{Name: "経費精算システム", Description: "経費精算システムの利用権限"},
	{Name: "顧客管理CRM", Description: "顧客管理CRMの利用権限"},
	{Name: "社内Wiki", Description: "社内Wikiの利用権限"},
	{Name: "勤怠管理システム", Description: "勤怠管理システムの利用権限"},
}

// Seed upserts the static catalog: services, roles including the reserved
// admin role, and a minimal department tree. Idempotent by name.
func Seed(gdb *gorm.DB, adminRole string) error {
	if adminRole == "" {
		adminRole = model.DefaultSystemAdminRole
	}
	for i := range seedServices {
		svc := seedServices[i]
		if err := gdb.Where(model.Service{Name: svc.Name}).
			Attrs(model.Service{Description: svc.Description}).
			FirstOrCreate(&svc).Error; err != nil {
			return err
		}
	}

	for _, name := range []string{"一般", "管理者", adminRole} {
		role := model.Role{Name: name}
		if err := gdb.Where(model.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}

	return seedDepartments(gdb)
}

func seedDepartments(gdb *gorm.DB) error {
	units := []string{"営業本部", "技術本部", "管理本部"}
	for _, unitName := range units {
		unit := model.Department{Name: unitName}
		if err := gdb.Where(model.Department{Name: unitName, ParentID: nil}).FirstOrCreate(&unit).Error; err != nil {
			return err
		}
		for _, suffix := range []string{" 第1部", " 第2部"} {
			dept := model.Department{Name: unitName + suffix, ParentID: &unit.ID}
			if err := gdb.Where(model.Department{Name: dept.Name}).
				Attrs(model.Department{ParentID: &unit.ID}).
				FirstOrCreate(&dept).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
