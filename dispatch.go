package main

type nullaryEncoder func(a *Assembler)
type unaryEncoder func(a *Assembler, size int, operand *Operand)
type binaryEncoder func(a *Assembler, aSize int, aOperand *Operand, bSize int, bOperand *Operand)

var operations [OperationCount]nullaryEncoder
var unaryOperations [int(UnaryOperationCount) * int(OperandTypeCount)]unaryEncoder
var binaryOperations [(int(BinaryOperationCount) + int(TernaryOperationCount)) * int(OperandTypeCount) * int(OperandTypeCount)]binaryEncoder

func init() {
	populateTables()
}

// populateTables registers every encoder against the dispatch tables.
// Grounded directly on x86.cpp's populateTables: an unpopulated cell left
// nil is a planner bug if ever reached (spec.md §4.6/§7), so Apply aborts
// with CategoryUnsupported rather than nil-panicking.
func populateTables() {
	operations[Return] = return_
	operations[LoadBarrier] = ignore
	operations[StoreStoreBarrier] = ignore
	operations[StoreLoadBarrier] = ignore

	unaryOperations[unaryIndex(Call, TypeConstant)] = callC
	unaryOperations[unaryIndex(Call, TypeRegister)] = callR
	unaryOperations[unaryIndex(Call, TypeMemory)] = callM
	unaryOperations[unaryIndex(AlignedCall, TypeConstant)] = alignedCallC
	unaryOperations[unaryIndex(LongCall, TypeConstant)] = longCallC

	unaryOperations[unaryIndex(Jump, TypeConstant)] = jumpC
	unaryOperations[unaryIndex(Jump, TypeRegister)] = jumpR
	unaryOperations[unaryIndex(Jump, TypeMemory)] = jumpM
	unaryOperations[unaryIndex(AlignedJump, TypeConstant)] = alignedJumpC
	unaryOperations[unaryIndex(LongJump, TypeConstant)] = longJumpC

	unaryOperations[unaryIndex(JumpIfEqual, TypeConstant)] = jumpIfC(CondEqual)
	unaryOperations[unaryIndex(JumpIfNotEqual, TypeConstant)] = jumpIfC(CondNotEqual)
	unaryOperations[unaryIndex(JumpIfGreater, TypeConstant)] = jumpIfC(CondGreater)
	unaryOperations[unaryIndex(JumpIfGreaterOrEqual, TypeConstant)] = jumpIfC(CondGreaterOrEqual)
	unaryOperations[unaryIndex(JumpIfLess, TypeConstant)] = jumpIfC(CondLess)
	unaryOperations[unaryIndex(JumpIfLessOrEqual, TypeConstant)] = jumpIfC(CondLessOrEqual)

	bo := func(op int, aType, bType OperandType, fn binaryEncoder) {
		binaryOperations[binaryIndex(op, aType, bType)] = fn
	}

	bo(int(Move), TypeRegister, TypeRegister, moveRR)
	bo(int(Move), TypeConstant, TypeRegister, moveCR)
	bo(int(Move), TypeMemory, TypeRegister, moveMR)
	bo(int(Move), TypeRegister, TypeMemory, moveRM)
	bo(int(Move), TypeConstant, TypeMemory, moveCM)
	bo(int(Move), TypeAddress, TypeRegister, moveAR)

	bo(int(MoveZ), TypeRegister, TypeRegister, moveZRR)
	bo(int(MoveZ), TypeMemory, TypeRegister, moveZMR)

	bo(int(Compare), TypeRegister, TypeRegister, compareRR)
	bo(int(Compare), TypeConstant, TypeRegister, compareCR)
	bo(int(Compare), TypeRegister, TypeMemory, compareRM)
	bo(int(Compare), TypeConstant, TypeMemory, compareCM)

	bo(int(Negate), TypeRegister, TypeRegister, negateRR)

	t := func(op TernaryOperation, aType, bType OperandType, fn binaryEncoder) {
		binaryOperations[binaryIndex(int(BinaryOperationCount)+int(op), aType, bType)] = fn
	}

	t(Add, TypeRegister, TypeRegister, addRR)
	t(Add, TypeConstant, TypeRegister, addCR)
	t(Subtract, TypeRegister, TypeRegister, subtractRR)
	t(Subtract, TypeConstant, TypeRegister, subtractCR)
	t(And, TypeRegister, TypeRegister, andRR)
	t(And, TypeConstant, TypeRegister, andCR)
	t(Or, TypeRegister, TypeRegister, orRR)
	t(Or, TypeConstant, TypeRegister, orCR)
	t(Xor, TypeRegister, TypeRegister, xorRR)
	t(Xor, TypeConstant, TypeRegister, xorCR)
	t(Multiply, TypeRegister, TypeRegister, multiplyRR)
	t(Multiply, TypeConstant, TypeRegister, multiplyCR)
	t(Divide, TypeRegister, TypeRegister, divideRR)
	t(Remainder, TypeRegister, TypeRegister, remainderRR)
	t(LongCompare, TypeRegister, TypeRegister, longCompareRR)
	t(LongCompare, TypeConstant, TypeRegister, longCompareCR)
	t(ShiftLeft, TypeRegister, TypeRegister, shiftLeftRR)
	t(ShiftLeft, TypeConstant, TypeRegister, shiftLeftCR)
	t(ShiftRight, TypeRegister, TypeRegister, shiftRightRR)
	t(ShiftRight, TypeConstant, TypeRegister, shiftRightCR)
	t(UnsignedShiftRight, TypeRegister, TypeRegister, unsignedShiftRightRR)
	t(UnsignedShiftRight, TypeConstant, TypeRegister, unsignedShiftRightCR)
}

func (a *Assembler) applyNullary(op Operation) {
	fn := operations[op]
	if fn == nil {
		unsupportedf("operation %d has no nullary encoder", op)
	}
	fn(a)
}

func (a *Assembler) applyUnary(op UnaryOperation, size int, aType OperandType, operand *Operand) {
	idx := unaryIndex(op, aType)
	if idx < 0 || idx >= len(unaryOperations) || unaryOperations[idx] == nil {
		unsupportedf("unary operation %d over %s has no encoder", op, aType)
	}
	unaryOperations[idx](a, size, operand)
}

func (a *Assembler) applyBinary(op int, aSize int, aType OperandType, aOperand *Operand, bSize int, bType OperandType, bOperand *Operand) {
	idx := binaryIndex(op, aType, bType)
	if idx < 0 || idx >= len(binaryOperations) || binaryOperations[idx] == nil {
		unsupportedf("binary/ternary operation %d over (%s,%s) has no encoder", op, aType, bType)
	}
	binaryOperations[idx](a, aSize, aOperand, bSize, bOperand)
}
