package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Category agrupa flags mutuamente excluyentes (una seleccion por categoria).
type Category int

const (
	CategoryPersonality Category = iota
	CategoryActivity
	CategoryCuriosity
	CategoryTrainability
	CategoryGrooming
	CategoryCoat
	CategoryAffection
)

// NumCategories es la cantidad fija de categorias del cuestionario.
const NumCategories = 7

// Flag es un rasgo binario dentro de una categoria.
type Flag int

const (
	FlagClingy Flag = iota
	FlagIndependent
	FlagActive
	FlagCalm
	FlagCurious
	FlagIncurious
	FlagEasyToTrain
	FlagHardToTrain
	FlagHighGrooming
	FlagLowGrooming
	FlagLongHair
	FlagShortHair
	FlagHairless
	FlagAffectionate
	FlagReserved
)

// NumFlags es la cantidad fija de flags del esquema.
const NumFlags = 15

var (
	ErrUnknownFlag      = errors.New("unknown trait flag")
	ErrUnknownCategory  = errors.New("unknown trait category")
	ErrInvalidSelection = errors.New("flag does not belong to category")
	ErrMissingCategory  = errors.New("missing selection for category")
)

type flagInfo struct {
	key      string
	label    string
	category Category
}

// flagTable usa como label el encabezado de columna de la planilla fuente.
var flagTable = [NumFlags]flagInfo{
	FlagClingy:       {key: "clingy", label: "粘人", category: CategoryPersonality},
	FlagIndependent:  {key: "independent", label: "独立", category: CategoryPersonality},
	FlagActive:       {key: "active", label: "好动", category: CategoryActivity},
	FlagCalm:         {key: "calm", label: "安静", category: CategoryActivity},
	FlagCurious:      {key: "curious", label: "好奇心强", category: CategoryCuriosity},
	FlagIncurious:    {key: "incurious", label: "好奇心弱", category: CategoryCuriosity},
	FlagEasyToTrain:  {key: "easy_to_train", label: "易训练", category: CategoryTrainability},
	FlagHardToTrain:  {key: "hard_to_train", label: "难训练", category: CategoryTrainability},
	FlagHighGrooming: {key: "high_grooming", label: "梳理需求高", category: CategoryGrooming},
	FlagLowGrooming:  {key: "low_grooming", label: "梳理需求低", category: CategoryGrooming},
	FlagLongHair:     {key: "long_hair", label: "长毛", category: CategoryCoat},
	FlagShortHair:    {key: "short_hair", label: "短毛", category: CategoryCoat},
	FlagHairless:     {key: "hairless", label: "无毛", category: CategoryCoat},
	FlagAffectionate: {key: "affectionate", label: "亲人程度高", category: CategoryAffection},
	FlagReserved:     {key: "reserved", label: "亲人程度低", category: CategoryAffection},
}

type categoryInfo struct {
	key   string
	label string
	flags []Flag
}

var categoryTable = [NumCategories]categoryInfo{
	CategoryPersonality:  {key: "personality", label: "性格", flags: []Flag{FlagClingy, FlagIndependent}},
	CategoryActivity:     {key: "activity", label: "活动量", flags: []Flag{FlagActive, FlagCalm}},
	CategoryCuriosity:    {key: "curiosity", label: "好奇心", flags: []Flag{FlagCurious, FlagIncurious}},
	CategoryTrainability: {key: "trainability", label: "可训练性", flags: []Flag{FlagEasyToTrain, FlagHardToTrain}},
	CategoryGrooming:     {key: "grooming", label: "梳理需求", flags: []Flag{FlagHighGrooming, FlagLowGrooming}},
	CategoryCoat:         {key: "coat", label: "毛发类型", flags: []Flag{FlagLongHair, FlagShortHair, FlagHairless}},
	CategoryAffection:    {key: "affection", label: "亲人程度", flags: []Flag{FlagAffectionate, FlagReserved}},
}

// AllFlags devuelve los 15 flags en orden de esquema.
func AllFlags() []Flag {
	out := make([]Flag, NumFlags)
	for i := range out {
		out[i] = Flag(i)
	}
	return out
}

// AllCategories devuelve las categorias en el orden del cuestionario.
func AllCategories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (f Flag) Valid() bool { return f >= 0 && int(f) < NumFlags }

// Key es el identificador usado por la API.
func (f Flag) Key() string {
	if !f.Valid() {
		return ""
	}
	return flagTable[f].key
}

// Label es el nombre de columna en el catalogo.
func (f Flag) Label() string {
	if !f.Valid() {
		return ""
	}
	return flagTable[f].label
}

func (f Flag) Category() Category {
	if !f.Valid() {
		return -1
	}
	return flagTable[f].category
}

func (f Flag) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Flag(%d)", int(f))
	}
	return flagTable[f].key
}

func (c Category) Valid() bool { return c >= 0 && int(c) < NumCategories }

func (c Category) Key() string {
	if !c.Valid() {
		return ""
	}
	return categoryTable[c].key
}

func (c Category) Label() string {
	if !c.Valid() {
		return ""
	}
	return categoryTable[c].label
}

// Flags devuelve las opciones de la categoria.
func (c Category) Flags() []Flag {
	if !c.Valid() {
		return nil
	}
	out := make([]Flag, len(categoryTable[c].flags))
	copy(out, categoryTable[c].flags)
	return out
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryTable[c].key
}

// ParseFlag acepta tanto la key de la API como el label de la columna.
func ParseFlag(s string) (Flag, error) {
	s = strings.TrimSpace(s)
	for i, info := range flagTable {
		if strings.EqualFold(s, info.key) || s == info.label {
			return Flag(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownFlag, s)
}

// ParseCategory acepta la key o el label de la categoria.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for i, info := range categoryTable {
		if strings.EqualFold(s, info.key) || s == info.label {
			return Category(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// FlagVector guarda un valor binario por flag, indexado por Flag.
type FlagVector [NumFlags]uint8

// Set marca el flag como presente.
func (v *FlagVector) Set(f Flag) {
	if f.Valid() {
		v[f] = 1
	}
}

func (v FlagVector) Has(f Flag) bool {
	return f.Valid() && v[f] == 1
}

// Dot cuenta los flags presentes en ambos vectores.
func (v FlagVector) Dot(other FlagVector) int {
	score := 0
	for i := 0; i < NumFlags; i++ {
		score += int(v[i]) * int(other[i])
	}
	return score
}

// Keys devuelve las keys de los flags presentes, en orden de esquema.
func (v FlagVector) Keys() []string {
	var keys []string
	for i := 0; i < NumFlags; i++ {
		if v[i] == 1 {
			keys = append(keys, Flag(i).Key())
		}
	}
	return keys
}
