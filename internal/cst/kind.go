package cst

// Kind is the type tag of a Node.
type Kind uint8

const (
	KindInvalid Kind = iota
	Module
	Import
	Error
	Doc

	// Top-level items.
	Contract
	Trait
	Struct
	Message
	Primitive
	Function
	NativeFunction
	AsmFunction
	Constant

	// Contract and trait members. Function and Constant double as members.
	StorageVar
	Init
	Receiver

	// Declaration parts.
	ContractAttr
	GetAttr
	MessageValue
	AsmArrangement
	TraitList
	ParamList
	Param
	ContractBody
	StructBody
	Field
	Block

	// Types.
	TypeName
	MapType
	BouncedType
	TlbAs

	// Statements. Block doubles as a block statement.
	Let
	Destruct
	DestructBinds
	DestructBind
	DestructRest
	Return
	If
	Else
	While
	Repeat
	DoUntil
	Try
	Catch
	Foreach
	Assign
	ExprStmt

	// Expressions.
	Ternary
	Binary
	Unary
	Suffix
	NonNull
	FieldSuffix
	CallSuffix
	StaticCall
	ArgList
	Arg
	Paren
	Instance
	InstanceArgs
	InstanceArg
	InitOf
	CodeOf
	Atom

	kindCount
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	Module:         "Module",
	Import:         "Import",
	Error:          "Error",
	Doc:            "Doc",
	Contract:       "Contract",
	Trait:          "Trait",
	Struct:         "Struct",
	Message:        "Message",
	Primitive:      "Primitive",
	Function:       "Function",
	NativeFunction: "NativeFunction",
	AsmFunction:    "AsmFunction",
	Constant:       "Constant",
	StorageVar:     "StorageVar",
	Init:           "Init",
	Receiver:       "Receiver",
	ContractAttr:   "ContractAttr",
	GetAttr:        "GetAttr",
	MessageValue:   "MessageValue",
	AsmArrangement: "AsmArrangement",
	TraitList:      "TraitList",
	ParamList:      "ParamList",
	Param:          "Param",
	ContractBody:   "ContractBody",
	StructBody:     "StructBody",
	Field:          "Field",
	Block:          "Block",
	TypeName:       "TypeName",
	MapType:        "MapType",
	BouncedType:    "BouncedType",
	TlbAs:          "TlbAs",
	Let:            "Let",
	Destruct:       "Destruct",
	DestructBinds:  "DestructBinds",
	DestructBind:   "DestructBind",
	DestructRest:   "DestructRest",
	Return:         "Return",
	If:             "If",
	Else:           "Else",
	While:          "While",
	Repeat:         "Repeat",
	DoUntil:        "DoUntil",
	Try:            "Try",
	Catch:          "Catch",
	Foreach:        "Foreach",
	Assign:         "Assign",
	ExprStmt:       "ExprStmt",
	Ternary:        "Ternary",
	Binary:         "Binary",
	Unary:          "Unary",
	Suffix:         "Suffix",
	NonNull:        "NonNull",
	FieldSuffix:    "FieldSuffix",
	CallSuffix:     "CallSuffix",
	StaticCall:     "StaticCall",
	ArgList:        "ArgList",
	Arg:            "Arg",
	Paren:          "Paren",
	Instance:       "Instance",
	InstanceArgs:   "InstanceArgs",
	InstanceArg:    "InstanceArg",
	InitOf:         "InitOf",
	CodeOf:         "CodeOf",
	Atom:           "Atom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Group tags.
const (
	GroupItem      = "item"
	GroupMember    = "member"
	GroupStatement = "statement"
	GroupType      = "type"
	GroupExpr      = "expression"
)

// Syntactic categories. Consumers that dispatch on Kind must handle every
// member of the categories they accept.
var (
	ItemKinds = []Kind{
		Contract, Trait, Struct, Message, Primitive,
		Function, NativeFunction, AsmFunction, Constant,
	}
	MemberKinds = []Kind{
		StorageVar, Constant, Function, AsmFunction, Init, Receiver,
	}
	StatementKinds = []Kind{
		Let, Destruct, Return, Block, If, While, Repeat,
		DoUntil, Try, Foreach, Assign, ExprStmt,
	}
	TypeKinds = []Kind{
		TypeName, MapType, BouncedType,
	}
	ExprKinds = []Kind{
		Ternary, Binary, Unary, Suffix, StaticCall, Paren,
		Instance, InitOf, CodeOf, Atom,
	}
)
