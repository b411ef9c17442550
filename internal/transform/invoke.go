package transform

import (
	"sawja/internal/classfile"
	sawjaerrors "sawja/internal/errors"
	"sawja/internal/ir"
)

// parseMethodDescriptor splits a JVM method descriptor into its
// parameter types (in declared order) and return type.
func parseMethodDescriptor(desc string) ([]classfile.Type, classfile.Type) {
	return classfile.ParseMethodDescriptor(desc)
}

// replaceUninit rewrites every stack slot carrying the given uninit
// identity to expr — the effect of folding `new C; ...; invokespecial
// <init>` when the Uninit marker was duplicated (e.g. via dup) onto
// more than one stack slot (spec §4.1 step 7).
func replaceUninit(stack []stackItem, id int, expr ir.Expr) []stackItem {
	out := make([]stackItem, len(stack))
	for i, it := range stack {
		if it.isUninit() && it.uninit.id == id {
			out[i] = exprItem(expr)
			continue
		}
		out[i] = it
	}
	return out
}

// basicArg reads a non-receiver call argument off an already-flushed
// stack slot. flush passes Uninit markers through untouched (spec §4.1
// step 5 never basic-izes one), so an Uninit reaching here is being used
// somewhere other than as the receiver of its own invokespecial <init> —
// exactly the general case spec §4.1 step 4 names UninitIsNotExpr for.
func (t *transformer) basicArg(pc int, it stackItem) (ir.BasicExpr, error) {
	if it.isUninit() {
		return nil, t.fail(sawjaerrors.KindUninitIsNotExpr, pc,
			"uninitialized object passed as a call argument")
	}
	return it.expr.(ir.BasicExpr), nil
}

func (t *transformer) invokeStatic(instr classfile.Instr, in []stackItem) ([]stackItem, error) {
	pc := instr.PC
	paramTypes, retType := parseMethodDescriptor(instr.MethodSig.Descriptor)
	argc := len(paramTypes)
	flushed := t.flush(pc, in)
	rest, top := pop(flushed, argc)
	args := make([]ir.BasicExpr, argc)
	for i, it := range top {
		a, err := t.basicArg(pc, it)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	t.emit(pc, ir.MayInit{Class: instr.ClassName})
	t.checkLink(pc, instr.Op, instr.ClassName)
	if classfile.IsVoid(retType) {
		t.emit(pc, ir.InvokeStatic{Class: instr.ClassName, Sig: instr.MethodSig, Args: args})
		return rest, nil
	}
	tmp := t.freshTemp(retType)
	v := tmp.Var
	t.emit(pc, ir.InvokeStatic{V: &v, Class: instr.ClassName, Sig: instr.MethodSig, Args: args})
	return push(rest, exprItem(tmp)), nil
}

func (t *transformer) invokeVirtual(instr classfile.Instr, in []stackItem, isInterface bool) ([]stackItem, error) {
	pc := instr.PC
	paramTypes, retType := parseMethodDescriptor(instr.MethodSig.Descriptor)
	argc := len(paramTypes)
	flushed := t.flush(pc, in)
	rest, top := pop(flushed, argc+1)
	receiver, err := t.basicArg(pc, top[0])
	if err != nil {
		return nil, err
	}
	args := make([]ir.BasicExpr, argc)
	for i, it := range top[1:] {
		a, err := t.basicArg(pc, it)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}
	t.checkNull(pc, receiver)
	t.checkLink(pc, instr.Op, instr.ClassName)

	var dispatch ir.DispatchKind
	if isInterface || instr.IsInterfaceMethod {
		dispatch = ir.Interface{ClassName: instr.ClassName}
	} else {
		dispatch = ir.Virtual{ObjectType: instr.ClassName}
	}

	if classfile.IsVoid(retType) {
		t.emit(pc, ir.InvokeVirtual{Dispatch: dispatch, Receiver: receiver, Sig: instr.MethodSig, Args: args})
		return rest, nil
	}
	tmp := t.freshTemp(retType)
	v := tmp.Var
	t.emit(pc, ir.InvokeVirtual{V: &v, Dispatch: dispatch, Receiver: receiver, Sig: instr.MethodSig, Args: args})
	return push(rest, exprItem(tmp)), nil
}

// invokeSpecial handles both ordinary invokespecial call sites
// (superclass/private method calls, which never touch an Uninit) and
// the `new C; ...; invokespecial C.<init>` constructor fold (spec §4.1
// step 7): the receiver slot is an Uninit marker only in the latter
// case, since a constructor's own super(...) call reads "this" off a
// local (aload_0), never off a fresh `new`.
func (t *transformer) invokeSpecial(instr classfile.Instr, in []stackItem) ([]stackItem, error) {
	pc := instr.PC
	paramTypes, _ := parseMethodDescriptor(instr.MethodSig.Descriptor)
	argc := len(paramTypes)
	flushed := t.flush(pc, in)
	rest, top := pop(flushed, argc+1)
	recvItem := top[0]
	args := make([]ir.BasicExpr, argc)
	for i, it := range top[1:] {
		if it.isUninit() {
			// The constructor call's own stack shape must be exactly
			// (Uninit, args…) with the receiver alone carrying the
			// Uninit marker; one turning up among the args themselves
			// is a shape mismatch, not a plain misuse of Uninit.
			return nil, t.fail(sawjaerrors.KindContentConstraintOnUninit, pc,
				"invokespecial %s: uninitialized object found among constructor arguments", instr.MethodSig.String())
		}
		args[i] = it.expr.(ir.BasicExpr)
	}

	if instr.MethodSig.Name == "<init>" && recvItem.isUninit() {
		um := recvItem.uninit
		if um.class != "" && instr.ClassName != "" && um.class != instr.ClassName {
			return nil, t.fail(sawjaerrors.KindTypeConstraintOnUninit, pc,
				"invokespecial <init> on class %s does not match new's class %s", instr.ClassName, um.class)
		}
		t.checkLink(pc, instr.Op, instr.ClassName)
		tmp := t.freshTemp(classfile.ObjectType{ClassName: um.class})
		t.emit(pc, ir.New{V: tmp.Var, Class: um.class, ArgTypes: paramTypes, Args: args})
		return replaceUninit(rest, um.id, tmp), nil
	}

	if recvItem.isUninit() {
		// invokespecial on a non-<init> method naming an Uninit receiver
		// never occurs in verifier-legal bytecode: an object must be
		// initialized before any other method can be invoked on it.
		return nil, t.fail(sawjaerrors.KindUninitIsNotExpr, pc, "invokespecial %s on an uninitialized object", instr.MethodSig.String())
	}

	receiver := recvItem.expr.(ir.BasicExpr)
	t.checkNull(pc, receiver)
	t.checkLink(pc, instr.Op, instr.ClassName)
	_, retType := parseMethodDescriptor(instr.MethodSig.Descriptor)
	if classfile.IsVoid(retType) {
		t.emit(pc, ir.InvokeNonVirtual{Class: instr.ClassName, Receiver: receiver, Sig: instr.MethodSig, Args: args})
		return rest, nil
	}
	tmp := t.freshTemp(retType)
	v := tmp.Var
	t.emit(pc, ir.InvokeNonVirtual{V: &v, Class: instr.ClassName, Receiver: receiver, Sig: instr.MethodSig, Args: args})
	return push(rest, exprItem(tmp)), nil
}
