package seeders

import "gearguard/internal/entities"

type teamSeed struct {
	Name        string
	Technicians []technicianSeed
}

type technicianSeed struct {
	Name string
	Role string
}

var teamsData = []teamSeed{
	{Name: "Machine Shop Team", Technicians: []technicianSeed{
		{Name: "Ravi Kumar", Role: "Senior Technician"},
		{Name: "Alex Chen", Role: "Technician"},
	}},
	{Name: "Automation Team", Technicians: []technicianSeed{
		{Name: "Anil Mehra", Role: "Automation Engineer"},
		{Name: "Lisa Park", Role: "Technician"},
	}},
	{Name: "Heavy Equipment Team", Technicians: []technicianSeed{
		{Name: "Mike Johnson", Role: "Lead Technician"},
	}},
	{Name: "Facilities Team", Technicians: []technicianSeed{
		{Name: "Pooja Nair", Role: "Facilities Technician"},
	}},
}

// Department совпадает с именем команды: по нему заявка получает команду автоматически.
var equipmentData = []struct {
	Name        string
	Serial      string
	Category    string
	Department  string
	Owner       string
	Description string
}{
	{"CNC Milling Machine A1", "CNC-2024-001", "Machine Tools", "Machine Shop Team", "Amit Sharma", "Высокоточный 5-осевой фрезерный станок с ЧПУ"},
	{"Industrial Robot Arm R2", "ROB-2024-002", "Robotics", "Automation Team", "Priya Singh", "6-осевой промышленный робот сборочной линии"},
	{"Hydraulic Press HP-500", "HYD-2024-003", "Press Equipment", "Heavy Equipment Team", "Vikram Patel", "Гидравлический пресс 500 т для штамповки"},
	{"Laser Cutting System LC-1", "LAS-2024-004", "Cutting Equipment", "Machine Shop Team", "Neha Verma", "Волоконный лазер для резки листового металла"},
	{"Assembly Conveyor Belt C3", "CON-2024-005", "Conveyors", "Automation Team", "Sunita Reddy", "Модульный конвейер сборочной линии"},
	{"Air Compressor AC-200", "AIR-2024-006", "Utilities", "Facilities Team", "Rajesh Gupta", "Промышленный компрессор для пневмоинструмента"},
}

var workCentersData = []struct {
	Name        string
	Code        string
	Tag         string
	CostPerHour float64
	Efficiency  float64
	OEETarget   float64
}{
	{"Assembly Line 1", "WC-ASM-01", "assembly", 120, 95, 85},
	{"Paint Booth", "WC-PNT-01", "finishing", 90, 88, 80},
}

// requestsData: DayOffset - сдвиг плановой даты от момента наполнения.
var requestsData = []struct {
	Subject      string
	Type         entities.RequestType
	Equipment    string
	WorkCenter   string
	Technician   string
	DayOffset    int
	Duration     float64
	Priority     entities.Priority
	Stage        entities.Stage
	Notes        string
	Instructions string
}{
	{"Spindle bearing replacement", entities.RequestTypeCorrective, "CNC-2024-001", "", "Ravi Kumar", -2, 4, entities.PriorityHigh, entities.StageInProgress,
		"Посторонний шум при работе, подшипник изношен.", "1. Обесточить станок\n2. Снять шпиндель\n3. Заменить подшипник\n4. Выставить и проверить"},
	{"Preventive lubrication service", entities.RequestTypePreventive, "ROB-2024-002", "", "Anil Mehra", 3, 2, entities.PriorityMedium, entities.StageNew,
		"Плановая квартальная смазка.", "Смазать все шарниры по регламенту производителя."},
	{"Hydraulic system failure", entities.RequestTypeCorrective, "HYD-2024-003", "", "Mike Johnson", -5, 8, entities.PriorityUrgent, entities.StageInProgress,
		"Требуется полная переборка гидросистемы, отказ нескольких уплотнений.", "1. Слить масло\n2. Заменить уплотнения\n3. Проверить насос\n4. Залить и испытать"},
	{"Laser alignment calibration", entities.RequestTypePreventive, "LAS-2024-004", "", "Alex Chen", 10, 3, entities.PriorityMedium, entities.StageNew,
		"Ежемесячная калибровка.", "Полная юстировка оптики и калибровка мощности."},
	{"Belt tension adjustment", entities.RequestTypeCorrective, "CON-2024-005", "", "Lisa Park", -4, 1, entities.PriorityLow, entities.StageRepaired,
		"Проскальзывание ленты, натяжение отрегулировано.", "Отрегулировать натяжитель до номинального момента."},
	{"Motor replacement", entities.RequestTypeCorrective, "CON-2024-005", "", "Lisa Park", 1, 5, entities.PriorityHigh, entities.StageNew,
		"Приводной двигатель на грани отказа, замена заказана.", "1. Обесточить\n2. Снять старый двигатель\n3. Установить новый\n4. Проверить"},
	{"Pressure valve inspection", entities.RequestTypePreventive, "HYD-2024-003", "", "Mike Johnson", 14, 2, entities.PriorityMedium, entities.StageNew,
		"Ежегодная проверка предохранительных клапанов.", "Проверить все клапаны сброса давления и записать показания."},
	{"Obsolete compressor controller", entities.RequestTypeCorrective, "AIR-2024-006", "", "Pooja Nair", -10, 0, entities.PriorityLow, entities.StageScrap,
		"Старый контроллер подлежит утилизации.", "Утилизировать по процедуре для электронных отходов."},
	{"Line conveyor inspection", entities.RequestTypePreventive, "", "WC-ASM-01", "Anil Mehra", 7, 1.5, entities.PriorityLow, entities.StageNew,
		"Плановый осмотр участка сборки.", "Проверить датчики и аварийные остановы."},
}
