package ruletable

import "github.com/pharmaguard-server/internal/domain"

// CPIC-derived rule entries. One entry per (gene, drug, phenotype); the
// gene is the drug's primary gene. The table must cover every phenotype
// the catalog tier tables can produce for each drug's genes - Validate
// enforces that at startup.
func referenceRules() []domain.DrugRule {
	return []domain.DrugRule{
		// Codeine - CYP2D6 (opioid prodrug)
		{
			Gene: "CYP2D6", Drug: "Codeine", Phenotype: domain.ULTRA_RAPID,
			Risk: domain.TOXIC, Severity: domain.SEVERITY_CRITICAL,
			Reason:        "Ultra-rapid CYP2D6 metabolizers produce excessively high morphine levels from codeine, risking overdose, respiratory depression and death at normal doses",
			Dosing:        "NOT RECOMMENDED - avoid codeine; use an alternative analgesic not dependent on CYP2D6 activation (morphine, hydromorphone, non-opioid options)",
			Monitoring:    "If used despite recommendation: monitor closely for respiratory depression, oversedation and pinpoint pupils",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Codeine and CYP2D6 (PharmGKB)",
		},
		{
			Gene: "CYP2D6", Drug: "Codeine", Phenotype: domain.RAPID,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Rapid CYP2D6 metabolizers convert codeine to morphine faster than normal, achieving effect quickly but risking increased side effects",
			Dosing:        "Start at the standard dose, ready to adjust downward; consider longer dosing intervals",
			Monitoring:    "Monitor for increased opioid side effects (dizziness, nausea, drowsiness) and signs of excess morphine production",
			EvidenceLevel: "2A", Strength: "Moderate",
			Citation: "CPIC Guideline for Codeine and CYP2D6 (PharmGKB)",
		},
		{
			Gene: "CYP2D6", Drug: "Codeine", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal CYP2D6 metabolizers convert codeine to morphine at typical rates, producing the expected analgesic effect",
			Dosing:        "Use normal recommended dose (15-60 mg every 4-6 hours as needed for pain)",
			Monitoring:    "Standard opioid monitoring for pain control and side effects",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Codeine and CYP2D6 (PharmGKB)",
		},
		{
			Gene: "CYP2D6", Drug: "Codeine", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate CYP2D6 metabolizers have reduced morphine formation, potentially reducing analgesic effectiveness",
			Dosing:        "Consider a higher than normal dose or shorter dosing intervals; standard dose may be inadequate",
			Monitoring:    "Assess pain control and titrate based on response",
			EvidenceLevel: "2A", Strength: "Moderate",
			Citation: "CPIC Guideline for Codeine and CYP2D6 (PharmGKB)",
		},
		{
			Gene: "CYP2D6", Drug: "Codeine", Phenotype: domain.POOR,
			Risk: domain.INEFFECTIVE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Poor CYP2D6 metabolizers produce little to no morphine from codeine, making it ineffective for pain relief",
			Dosing:        "NOT RECOMMENDED - use an alternative analgesic (morphine, oxycodone, hydromorphone or non-opioid options)",
			Monitoring:    "If used despite recommendation: monitor for complete lack of pain relief",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Codeine and CYP2D6 (PharmGKB)",
		},

		// Warfarin - CYP2C9 (anticoagulant)
		{
			Gene: "CYP2C9", Drug: "Warfarin", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal CYP2C9 metabolizers clear warfarin at typical rates, allowing standard dosing with INR titration",
			Dosing:        "Standard initiation: 5-10 mg daily; adjust based on INR response",
			Monitoring:    "INR at baseline, 2-7 days after initiation, weekly for 1-2 weeks, then every 1-4 weeks",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Warfarin and CYP2C9/VKORC1",
		},
		{
			Gene: "CYP2C9", Drug: "Warfarin", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate CYP2C9 metabolizers have reduced warfarin clearance, increasing drug exposure and bleeding risk",
			Dosing:        "Reduce starting dose by 30-40% (initiate at 2.5-5 mg daily); titrate to INR",
			Monitoring:    "More frequent INR monitoring (2-3x weekly initially) until stable",
			EvidenceLevel: "2A", Strength: "Moderate",
			Citation: "CPIC Guideline for Warfarin and CYP2C9/VKORC1",
		},
		{
			Gene: "CYP2C9", Drug: "Warfarin", Phenotype: domain.POOR,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Poor CYP2C9 metabolizers have significantly impaired warfarin clearance, dramatically increasing anticoagulation effect and bleeding risk",
			Dosing:        "Use with extreme caution - 40-60% dose reduction; start at 0.5-2 mg daily",
			Monitoring:    "Very frequent INR monitoring (daily to every other day) until stable; watch for bleeding signs",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Warfarin and CYP2C9/VKORC1",
		},
		{
			Gene: "CYP2C9", Drug: "Warfarin", Phenotype: domain.NO_FUNCTION,
			Risk: domain.TOXIC, Severity: domain.SEVERITY_CRITICAL,
			Reason:        "Near-complete loss of CYP2C9 function prevents warfarin clearance; standard dosing carries a severe bleeding risk",
			Dosing:        "Avoid warfarin where possible; consider a non-CYP2C9-dependent anticoagulant. If unavoidable, start below 0.5-1 mg daily",
			Monitoring:    "Daily INR monitoring under specialist supervision; watch closely for hematuria, epistaxis and petechiae",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Warfarin and CYP2C9/VKORC1",
		},

		// Clopidogrel - CYP2C19 (antiplatelet prodrug)
		{
			Gene: "CYP2C19", Drug: "Clopidogrel", Phenotype: domain.ULTRA_RAPID,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Ultra-rapid CYP2C19 metabolizers activate clopidogrel efficiently; antiplatelet effect is at least normal",
			Dosing:        "Standard dosing: loading 300-600 mg, maintenance 75 mg daily",
			Monitoring:    "Monitor for bleeding; standard cardiovascular follow-up",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Clopidogrel and CYP2C19",
		},
		{
			Gene: "CYP2C19", Drug: "Clopidogrel", Phenotype: domain.RAPID,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Rapid CYP2C19 metabolizers activate clopidogrel at or above normal rates, producing a therapeutic antiplatelet effect",
			Dosing:        "Standard dosing: loading 300-600 mg, maintenance 75 mg daily",
			Monitoring:    "Monitor for bleeding; standard cardiovascular follow-up",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Clopidogrel and CYP2C19",
		},
		{
			Gene: "CYP2C19", Drug: "Clopidogrel", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal CYP2C19 metabolizers activate clopidogrel at normal rates, producing a therapeutic antiplatelet effect",
			Dosing:        "Standard dosing: loading 300-600 mg, maintenance 75 mg daily",
			Monitoring:    "Monitor for bleeding; standard cardiovascular follow-up",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Clopidogrel and CYP2C19",
		},
		{
			Gene: "CYP2C19", Drug: "Clopidogrel", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate CYP2C19 metabolizers have reduced clopidogrel activation and a reduced antiplatelet effect",
			Dosing:        "Consider an alternative P2Y12 inhibitor (prasugrel 5-10 mg or ticagrelor 60-90 mg daily), or increase clopidogrel maintenance to 150 mg daily",
			Monitoring:    "Assess antiplatelet response; platelet function testing is helpful; higher stent thrombosis risk",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "CPIC Guideline for Clopidogrel and CYP2C19",
		},
		{
			Gene: "CYP2C19", Drug: "Clopidogrel", Phenotype: domain.POOR,
			Risk: domain.INEFFECTIVE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Poor CYP2C19 metabolizers have minimal clopidogrel activation, resulting in little antiplatelet effect and high stent thrombosis risk",
			Dosing:        "NOT RECOMMENDED - use an alternative P2Y12 inhibitor that does not require CYP2C19 activation (prasugrel 5-10 mg or ticagrelor 60-90 mg daily)",
			Monitoring:    "If unable to switch: intensive antiplatelet monitoring required",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Clopidogrel and CYP2C19",
		},

		// Simvastatin - SLCO1B1 (hepatic uptake transporter)
		{
			Gene: "SLCO1B1", Drug: "Simvastatin", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal SLCO1B1 transporters move simvastatin into hepatocytes efficiently; standard dosing produces the expected LDL reduction",
			Dosing:        "Standard dosing: 10-40 mg daily",
			Monitoring:    "Lipid levels at 4-12 weeks, then annually; assess for muscle symptoms",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Simvastatin and SLCO1B1",
		},
		{
			Gene: "SLCO1B1", Drug: "Simvastatin", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate SLCO1B1 function reduces hepatic uptake of simvastatin, increasing plasma levels and myopathy risk",
			Dosing:        "Limit to 20 mg daily or switch to pravastatin/rosuvastatin",
			Monitoring:    "Baseline CK level; assess for muscle pain or weakness monthly",
			EvidenceLevel: "2A", Strength: "Moderate",
			Citation: "CPIC Guideline for Simvastatin and SLCO1B1",
		},
		{
			Gene: "SLCO1B1", Drug: "Simvastatin", Phenotype: domain.POOR,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Poor SLCO1B1 function significantly impairs simvastatin hepatic uptake, dramatically increasing plasma levels and severe myopathy risk",
			Dosing:        "Avoid simvastatin or use at the lowest dose (5-10 mg max); prefer pravastatin or rosuvastatin",
			Monitoring:    "If used: baseline CK, monthly monitoring for 3 months, then quarterly; watch for muscle symptoms",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Simvastatin and SLCO1B1",
		},

		// Azathioprine - TPMT (thiopurine immunosuppressant)
		{
			Gene: "TPMT", Drug: "Azathioprine", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal TPMT activity allows standard immunosuppressive dosing",
			Dosing:        "Standard dose: 1-2.5 mg/kg/day in divided doses",
			Monitoring:    "CBC with differential weekly for 8-12 weeks, then monthly; watch for myelosuppression",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Azathioprine and TPMT",
		},
		{
			Gene: "TPMT", Drug: "Azathioprine", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate TPMT activity causes accumulation of toxic 6-thioguanine nucleotides, increasing myelosuppression and infection risk",
			Dosing:        "Reduce dose to 25-50% of normal; start low and titrate carefully",
			Monitoring:    "CBC weekly for 4-6 weeks, then every 2 weeks; watch for infections, severe anemia and platelet drops",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Azathioprine and TPMT",
		},
		{
			Gene: "TPMT", Drug: "Azathioprine", Phenotype: domain.POOR,
			Risk: domain.TOXIC, Severity: domain.SEVERITY_CRITICAL,
			Reason:        "Very low TPMT activity leads to excessive 6-thioguanine accumulation causing severe bone marrow toxicity and life-threatening infections",
			Dosing:        "Strongly consider avoiding; if no alternative exists, use at 10% of normal dose",
			Monitoring:    "If absolutely necessary: daily CBC monitoring; consider G-CSF support",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Azathioprine and TPMT",
		},

		// Fluorouracil - DPYD (fluoropyrimidine chemotherapy)
		{
			Gene: "DPYD", Drug: "Fluorouracil", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal DPYD function metabolizes 5-FU efficiently; standard dosing produces expected efficacy with manageable toxicity",
			Dosing:        "Standard chemotherapy protocol dosing (typically 400-500 mg/m2 IV)",
			Monitoring:    "Standard oncology monitoring: CBC weekly, assess for mucositis and diarrhea",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Fluoropyrimidines and DPYD",
		},
		{
			Gene: "DPYD", Drug: "Fluorouracil", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Partial DPYD deficiency (heterozygous carrier) increases 5-FU toxicity risk through drug accumulation",
			Dosing:        "Reduce dose by 25-50%; start at 50-75% of the standard dose and escalate cautiously if tolerated",
			Monitoring:    "Close toxicity monitoring: mucositis grade, stool frequency, CBC weekly",
			EvidenceLevel: "2A", Strength: "Moderate",
			Citation: "CPIC Guideline for Fluoropyrimidines and DPYD",
		},
		{
			Gene: "DPYD", Drug: "Fluorouracil", Phenotype: domain.POOR,
			Risk: domain.TOXIC, Severity: domain.SEVERITY_CRITICAL,
			Reason:        "DPYD deficiency prevents 5-FU metabolism, causing life-threatening toxicity: severe mucositis, cardiotoxicity and sepsis",
			Dosing:        "NOT RECOMMENDED for standard 5-FU therapy - consider alternative chemotherapy regimens",
			Monitoring:    "If unavoidable: daily hospital monitoring with intensive supportive care available",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Fluoropyrimidines and DPYD",
		},

		// Metoprolol - CYP2D6 (beta-blocker)
		{
			Gene: "CYP2D6", Drug: "Metoprolol", Phenotype: domain.ULTRA_RAPID,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Ultra-rapid CYP2D6 metabolizers clear metoprolol quickly, risking sub-therapeutic exposure at standard doses",
			Dosing:        "Titrate to clinical effect; a higher dose or a beta-blocker not metabolized by CYP2D6 (atenolol, bisoprolol) may be required",
			Monitoring:    "Monitor heart rate and blood pressure for inadequate response",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "PharmGKB Annotation for Metoprolol and CYP2D6",
		},
		{
			Gene: "CYP2D6", Drug: "Metoprolol", Phenotype: domain.RAPID,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Rapid CYP2D6 metabolizers clear metoprolol faster than normal; standard dosing may produce a reduced effect",
			Dosing:        "Start at the standard dose and titrate upward based on heart rate and blood pressure response",
			Monitoring:    "Monitor heart rate, blood pressure and exercise tolerance",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "PharmGKB Annotation for Metoprolol and CYP2D6",
		},
		{
			Gene: "CYP2D6", Drug: "Metoprolol", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal CYP2D6 metabolizers clear metoprolol effectively; standard dosing achieves the therapeutic effect",
			Dosing:        "Standard dosing: 25-190 mg daily in divided doses",
			Monitoring:    "Monitor heart rate, blood pressure and exercise tolerance",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "PharmGKB Annotation for Metoprolol and CYP2D6",
		},
		{
			Gene: "CYP2D6", Drug: "Metoprolol", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate CYP2D6 metabolizers have reduced metoprolol clearance, with moderately increased drug exposure",
			Dosing:        "Start low and titrate slowly; a 25% dose reduction may be appropriate",
			Monitoring:    "Monitor for bradycardia, hypotension and fatigue",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "PharmGKB Annotation for Metoprolol and CYP2D6",
		},
		{
			Gene: "CYP2D6", Drug: "Metoprolol", Phenotype: domain.POOR,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Poor CYP2D6 metabolizers accumulate metoprolol, increasing bradycardia, hypotension and fatigue risk",
			Dosing:        "Reduce dose by 25-50% or switch to a beta-blocker not metabolized by CYP2D6 (atenolol, bisoprolol, carvedilol)",
			Monitoring:    "Monitor for bradycardia (below 50 bpm), hypotension, fatigue and dizziness",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "PharmGKB Annotation for Metoprolol and CYP2D6",
		},

		// Amitriptyline - CYP2D6/CYP2C19 (tricyclic antidepressant)
		{
			Gene: "CYP2D6", Drug: "Amitriptyline", Phenotype: domain.ULTRA_RAPID,
			Risk: domain.INEFFECTIVE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Ultra-rapid metabolism prevents amitriptyline from reaching therapeutic plasma concentrations at standard doses",
			Dosing:        "Avoid amitriptyline; select an antidepressant not primarily metabolized by CYP2D6",
			Monitoring:    "If used despite recommendation: therapeutic drug monitoring to confirm exposure",
			EvidenceLevel: "1A", Strength: "Strong",
			Citation: "CPIC Guideline for Tricyclic Antidepressants and CYP2D6/CYP2C19",
		},
		{
			Gene: "CYP2D6", Drug: "Amitriptyline", Phenotype: domain.RAPID,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Rapid metabolism lowers amitriptyline exposure; the standard dose may be sub-therapeutic",
			Dosing:        "Initiate at the standard dose; titrate upward guided by response and therapeutic drug monitoring",
			Monitoring:    "Assess therapeutic response at 2-4 weeks; consider plasma level measurement",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "CPIC Guideline for Tricyclic Antidepressants and CYP2D6/CYP2C19",
		},
		{
			Gene: "CYP2D6", Drug: "Amitriptyline", Phenotype: domain.NORMAL,
			Risk: domain.SAFE, Severity: domain.SEVERITY_NONE,
			Reason:        "Normal metabolizers process amitriptyline at typical rates; standard dosing is effective",
			Dosing:        "Standard initiation: 25-50 mg at bedtime; titrate to 75-150 mg daily maintenance",
			Monitoring:    "Monitor for anticholinergic effects and cardiac conduction changes",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "CPIC Guideline for Tricyclic Antidepressants and CYP2D6/CYP2C19",
		},
		{
			Gene: "CYP2D6", Drug: "Amitriptyline", Phenotype: domain.INTERMEDIATE,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_MODERATE,
			Reason:        "Intermediate metabolizers have moderately increased amitriptyline exposure and side-effect risk",
			Dosing:        "Consider a 25% reduction of the starting dose; titrate guided by response",
			Monitoring:    "Monitor for anticholinergic effects, sedation and orthostatic hypotension",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "CPIC Guideline for Tricyclic Antidepressants and CYP2D6/CYP2C19",
		},
		{
			Gene: "CYP2D6", Drug: "Amitriptyline", Phenotype: domain.POOR,
			Risk: domain.ADJUST_DOSAGE, Severity: domain.SEVERITY_HIGH,
			Reason:        "Poor metabolizers accumulate amitriptyline, increasing anticholinergic and cardiac toxicity risk",
			Dosing:        "Start low (10-25 mg at bedtime) and titrate slowly; a 50% dose reduction is recommended",
			Monitoring:    "Watch for anticholinergic side effects, orthostatic hypotension, arrhythmias and QT prolongation",
			EvidenceLevel: "2B", Strength: "Moderate",
			Citation: "CPIC Guideline for Tricyclic Antidepressants and CYP2D6/CYP2C19",
		},
	}
}
