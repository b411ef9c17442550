// Package jsonclass is a minimal classfile.Decoder implementation:
// real class-file constant-pool decoding and bytecode disassembly are
// out of scope (spec §1's external-collaborator boundary), so this
// package plays the same thin data-binding role internal/nativestubs
// plays for native-method stubs — it binds JSON onto the ClassFile
// contract type rather than parsing the real binary format, giving
// cmd/sawja something concrete to hand classpath.Open without taking
// on a constant-pool parser.
package jsonclass

import (
	"encoding/json"

	"sawja/internal/classfile"
)

// rawInstr carries the classfile.Instr fields listed below; Target,
// ArrayElemKind, ArrayElemType and Dims have no JSON counterpart here
// and decode as zero values. PC/Op stay numeric since hand-authored
// fixtures name an opcode by its JVM numeric value, the same way a real
// disassembler would emit it.
type rawInstr struct {
	PC                int                    `json:"pc"`
	Op                classfile.Opcode       `json:"op"`
	Line              int                    `json:"line"`
	LocalSlot         int                    `json:"local_slot,omitempty"`
	IIncConst         int32                  `json:"iinc_const,omitempty"`
	Const             interface{}            `json:"const,omitempty"`
	ClassName         classfile.ClassName    `json:"class_name,omitempty"`
	FieldSig          classfile.FieldSignature  `json:"field_sig,omitempty"`
	MethodSig         classfile.MethodSignature `json:"method_sig,omitempty"`
	IsInterfaceMethod bool                   `json:"is_interface_method,omitempty"`
}

type rawCode struct {
	MaxStack  int                          `json:"max_stack"`
	MaxLocals int                          `json:"max_locals"`
	Instrs    []rawInstr                   `json:"instrs"`
	ExcTable  []classfile.ExceptionTableEntry `json:"exc_table,omitempty"`
	Lines     classfile.LineNumberTable    `json:"lines,omitempty"`
}

type rawMethod struct {
	Name       string  `json:"name"`
	Descriptor string  `json:"descriptor"`
	IsStatic   bool    `json:"is_static,omitempty"`
	IsAbstract bool    `json:"is_abstract,omitempty"`
	IsNative   bool    `json:"is_native,omitempty"`
	IsPrivate  bool    `json:"is_private,omitempty"`
	IsFinal    bool    `json:"is_final,omitempty"`
	Code       *rawCode `json:"code,omitempty"`
}

type rawField struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	IsStatic   bool   `json:"is_static,omitempty"`
	IsFinal    bool   `json:"is_final,omitempty"`
}

// rawClass is the on-the-wire shape one classpath entry named
// "<ClassName>.json" is expected to hold.
type rawClass struct {
	Name        classfile.ClassName `json:"name"`
	SuperName   string              `json:"super_name,omitempty"`
	Interfaces  []classfile.ClassName `json:"interfaces,omitempty"`
	IsInterface bool                `json:"is_interface,omitempty"`
	IsFinal     bool                `json:"is_final,omitempty"`
	IsAbstract  bool                `json:"is_abstract,omitempty"`
	Methods     []rawMethod         `json:"methods,omitempty"`
	Fields      []rawField          `json:"fields,omitempty"`
}

// Decode implements classfile.Decoder against the JSON shape above,
// parsing every method/field descriptor through the same
// classfile.ParseFieldDescriptor/ParseMethodDescriptor the rest of the
// module already uses for descriptor strings it receives elsewhere.
func Decode(raw []byte) (*classfile.ClassFile, error) {
	var rc rawClass
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, err
	}

	cf := &classfile.ClassFile{
		Name:        rc.Name,
		SuperName:   rc.SuperName,
		Interfaces:  rc.Interfaces,
		IsInterface: rc.IsInterface,
		IsFinal:     rc.IsFinal,
		IsAbstract:  rc.IsAbstract,
	}

	for _, rm := range rc.Methods {
		paramTypes, returnType := classfile.ParseMethodDescriptor(rm.Descriptor)
		m := &classfile.Method{
			Owner:      rc.Name,
			Sig:        classfile.MethodSignature{Name: rm.Name, Descriptor: rm.Descriptor},
			ParamTypes: paramTypes,
			ReturnType: returnType,
			IsStatic:   rm.IsStatic,
			IsAbstract: rm.IsAbstract,
			IsNative:   rm.IsNative,
			IsPrivate:  rm.IsPrivate,
			IsFinal:    rm.IsFinal,
		}
		if rm.Code != nil {
			instrs := make([]classfile.Instr, len(rm.Code.Instrs))
			for i, ri := range rm.Code.Instrs {
				instrs[i] = classfile.Instr{
					PC:                ri.PC,
					Op:                ri.Op,
					Line:              ri.Line,
					LocalSlot:         ri.LocalSlot,
					IIncConst:         ri.IIncConst,
					Const:             ri.Const,
					ClassName:         ri.ClassName,
					FieldSig:          ri.FieldSig,
					MethodSig:         ri.MethodSig,
					IsInterfaceMethod: ri.IsInterfaceMethod,
				}
			}
			m.Code = &classfile.Code{
				MaxStack:  rm.Code.MaxStack,
				MaxLocals: rm.Code.MaxLocals,
				Instrs:    instrs,
				ExcTable:  rm.Code.ExcTable,
				Lines:     rm.Code.Lines,
			}
		}
		cf.Methods = append(cf.Methods, m)
	}

	for _, rf := range rc.Fields {
		cf.Fields = append(cf.Fields, &classfile.Field{
			Owner:    rc.Name,
			Sig:      classfile.FieldSignature{Name: rf.Name, Descriptor: rf.Descriptor},
			Type:     classfile.ParseFieldDescriptor(rf.Descriptor),
			IsStatic: rf.IsStatic,
			IsFinal:  rf.IsFinal,
		})
	}

	return cf, nil
}
