package classfile

// ParseFieldDescriptor parses a single JVM field descriptor (e.g. "I",
// "[Ljava/lang/String;", "Z") into a Type. Method descriptors are not
// accepted here; split one with ParseMethodDescriptor first.
func ParseFieldDescriptor(desc string) Type {
	t, _ := parseOneDescriptor(desc, 0)
	return t
}

// ParseMethodDescriptor splits a JVM method descriptor into its
// parameter types (in declared order) and return type.
func ParseMethodDescriptor(desc string) ([]Type, Type) {
	open, shut := -1, -1
	for i := 0; i < len(desc); i++ {
		switch desc[i] {
		case '(':
			open = i
		case ')':
			shut = i
		}
		if open >= 0 && shut >= 0 {
			break
		}
	}
	if open < 0 || shut < 0 || shut < open {
		return nil, Void
	}
	params := desc[open+1 : shut]
	var types []Type
	for i := 0; i < len(params); {
		t, next := parseOneDescriptor(params, i)
		types = append(types, t)
		i = next
	}
	ret, _ := parseOneDescriptor(desc[shut+1:], 0)
	return types, ret
}

func parseOneDescriptor(desc string, i int) (Type, int) {
	if i >= len(desc) {
		return ObjectType{ClassName: "java/lang/Object"}, i
	}
	switch desc[i] {
	case 'B':
		return Primitive{Kind: TByte}, i + 1
	case 'C':
		return Primitive{Kind: TChar}, i + 1
	case 'D':
		return Primitive{Kind: TDouble}, i + 1
	case 'F':
		return Primitive{Kind: TFloat}, i + 1
	case 'I':
		return Primitive{Kind: TInt}, i + 1
	case 'J':
		return Primitive{Kind: TLong}, i + 1
	case 'S':
		return Primitive{Kind: TShort}, i + 1
	case 'Z':
		return Primitive{Kind: TBoolean}, i + 1
	case 'V':
		return Void, i + 1
	case 'L':
		j := i + 1
		for j < len(desc) && desc[j] != ';' {
			j++
		}
		return ObjectType{ClassName: desc[i+1 : j]}, j + 1
	case '[':
		dims := 0
		j := i
		for j < len(desc) && desc[j] == '[' {
			dims++
			j++
		}
		elem, next := parseOneDescriptor(desc, j)
		return ObjectType{Array: &ArrayType{Elem: elem, Dims: dims}}, next
	default:
		return ObjectType{ClassName: "java/lang/Object"}, i + 1
	}
}
